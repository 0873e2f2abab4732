package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

var requiredColumns = []string{"open", "high", "low", "close", "volume"}

type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDataSource creates a new DuckDB data source instance with the specified database path.
// The path parameter specifies the DuckDB database file location.
// This is distinct from Initialize() which loads market data into the database.
func NewDataSource(path string, logger *logger.Logger) (DataSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	_, err = db.Exec(`SET threads=4;`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to configure duckdb", err)
	}

	return &DuckDBDataSource{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Initialize implements DataSource.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	reader, err := readerFor(path)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`DROP VIEW IF EXISTS market_data; DROP VIEW IF EXISTS raw_market_data;`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing view", err)
	}

	// Using raw SQL as Squirrel doesn't support CREATE VIEW
	_, err = d.db.Exec(fmt.Sprintf(`CREATE VIEW raw_market_data AS SELECT * FROM %s('%s');`, reader, escapeLiteral(path)))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to read %s", path)
	}

	columns, err := d.columns("raw_market_data")
	if err != nil {
		return err
	}

	for _, col := range requiredColumns {
		if !slices.Contains(columns, col) {
			return errors.Newf(errors.ErrCodeInvalidBarSeries, "%s is missing column %q", path, col)
		}
	}

	var timeColumn string

	switch {
	case slices.Contains(columns, "time"):
		timeColumn = "time"
	case slices.Contains(columns, "date"):
		timeColumn = "date"
	default:
		return errors.Newf(errors.ErrCodeInvalidBarSeries, "%s has neither a time nor a date column", path)
	}

	symbolColumn := "symbol"
	if !slices.Contains(columns, "symbol") {
		symbol, _, _ := ParseDataFileName(path)
		symbolColumn = fmt.Sprintf("'%s'", escapeLiteral(symbol))
	}

	query := fmt.Sprintf(`
		CREATE VIEW market_data AS
		SELECT CAST(%s AS TIMESTAMP) AS time, CAST(%s AS VARCHAR) AS symbol,
			CAST(open AS DOUBLE) AS open, CAST(high AS DOUBLE) AS high, CAST(low AS DOUBLE) AS low,
			CAST(close AS DOUBLE) AS close, CAST(volume AS DOUBLE) AS volume
		FROM raw_market_data;
	`, timeColumn, symbolColumn)

	if _, err = d.db.Exec(query); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create market_data view", err)
	}

	return nil
}

func (d *DuckDBDataSource) columns(view string) ([]string, error) {
	query, args, err := d.sq.
		Select("column_name").
		From("information_schema.columns").
		Where(squirrel.Eq{"table_name": view}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to describe data file", err)
	}
	defer rows.Close()

	var columns []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan column name", err)
		}

		columns = append(columns, strings.ToLower(name))
	}

	return columns, rows.Err()
}

func (d *DuckDBDataSource) timeRange(builder squirrel.SelectBuilder, start optional.Option[time.Time], end optional.Option[time.Time]) squirrel.SelectBuilder {
	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	return builder
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	query, args, err := d.timeRange(d.sq.Select("COUNT(*)").From("market_data"), start, end).ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count market data", err)
	}

	return count, nil
}

// ReadAll implements DataSource.
func (d *DuckDBDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.MarketData, error) bool) {
	return func(yield func(types.MarketData, error) bool) {
		d.logger.Debug("Reading all data from DuckDB")

		query, args, err := d.timeRange(
			d.sq.Select("time", "symbol", "open", "high", "low", "close", "volume").From("market_data"),
			start, end,
		).OrderBy("time ASC").ToSql()
		if err != nil {
			yield(types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err))

			return
		}

		rows, err := d.db.Query(query, args...)
		if err != nil {
			yield(types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query market data", err))

			return
		}
		defer rows.Close()

		for rows.Next() {
			var (
				timestamp                      time.Time
				open, high, low, close, volume sql.NullFloat64
				symbol                         string
			)

			if err := rows.Scan(&timestamp, &symbol, &open, &high, &low, &close, &volume); err != nil {
				yield(types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err))

				return
			}

			// NULLs become NaN so bar validation rejects them
			marketData := types.MarketData{
				Symbol: symbol,
				Time:   timestamp,
				Open:   nullToNaN(open),
				High:   nullToNaN(high),
				Low:    nullToNaN(low),
				Close:  nullToNaN(close),
				Volume: nullToNaN(volume),
			}

			if !yield(marketData, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err))
		}
	}
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	if d.db != nil {
		return d.db.Close()
	}

	return nil
}

func readerFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "read_csv_auto", nil
	case ".parquet":
		return "read_parquet", nil
	default:
		return "", errors.Newf(errors.ErrCodeDataPathError, "unsupported data file %s: expected .csv or .parquet", path)
	}
}

func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
