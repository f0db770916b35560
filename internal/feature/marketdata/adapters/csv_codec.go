// Package adapters はmarketdataフィーチャーのレコードセット永続化を提供します。
package adapters

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"cloud.google.com/go/civil"

	"stock_pipeline/internal/feature/marketdata/domain"
	"stock_pipeline/internal/feature/marketdata/domain/entity"
)

// CSVヘッダー。変換ジョブはこの列名でスキーマを適用します。
var (
	PriceHeader     = []string{"Stock_Name", "Stock", "Day", "Value"}
	SentimentHeader = []string{"Stock_Name", "Stock", "Time", "Day", "URL", "Title", "Sentiment", "Record_Count"}
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// EncodePrices は価格レコードをヘッダー付きCSVとして書き出します。
func EncodePrices(w io.Writer, records []entity.PriceRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(PriceHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.StockName, r.Stock, r.Day.String(), formatFloat(r.Value)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeSentiments はセンチメントレコードをヘッダー付きCSVとして書き出します。
func EncodeSentiments(w io.Writer, records []entity.SentimentRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SentimentHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.StockName,
			r.Stock,
			r.Time,
			r.Day.String(),
			r.URL,
			r.Title,
			formatFloat(r.Sentiment),
			strconv.Itoa(r.RecordCount),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodePrices はCSVを型付きの価格レコードとして読み込みます。
// スキーマに合わない行は読み飛ばさず、domain.ErrMalformedRow でエラーにします。
func DecodePrices(r io.Reader) ([]entity.PriceRecord, error) {
	rows, err := readRows(r, PriceHeader)
	if err != nil {
		return nil, err
	}
	out := make([]entity.PriceRecord, 0, len(rows))
	for i, row := range rows {
		d, err := civil.ParseDate(row[2])
		if err != nil {
			return nil, malformed(i, "Day", err)
		}
		v, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, malformed(i, "Value", err)
		}
		out = append(out, entity.PriceRecord{StockName: row[0], Stock: row[1], Day: d, Value: v})
	}
	return out, nil
}

// DecodeSentiments はCSVを型付きのセンチメントレコードとして読み込みます。
func DecodeSentiments(r io.Reader) ([]entity.SentimentRecord, error) {
	rows, err := readRows(r, SentimentHeader)
	if err != nil {
		return nil, err
	}
	out := make([]entity.SentimentRecord, 0, len(rows))
	for i, row := range rows {
		d, err := civil.ParseDate(row[3])
		if err != nil {
			return nil, malformed(i, "Day", err)
		}
		s, err := strconv.ParseFloat(row[6], 64)
		if err != nil {
			return nil, malformed(i, "Sentiment", err)
		}
		n, err := strconv.Atoi(row[7])
		if err != nil {
			return nil, malformed(i, "Record_Count", err)
		}
		out = append(out, entity.SentimentRecord{
			StockName:   row[0],
			Stock:       row[1],
			Time:        row[2],
			Day:         d,
			URL:         row[4],
			Title:       row[5],
			Sentiment:   s,
			RecordCount: n,
		})
	}
	return out, nil
}

// readRows はヘッダーを検証し、データ行を返します。列数が異なる行はエラーになります。
func readRows(r io.Reader, header []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	got, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header", domain.ErrMalformedRow)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", domain.ErrMalformedRow, err)
	}
	if !slices.Equal(got, header) {
		return nil, fmt.Errorf("%w: header %v, want %v", domain.ErrMalformedRow, got, header)
	}

	var rows [][]string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedRow, err)
		}
		rows = append(rows, row)
	}
}

func malformed(i int, column string, err error) error {
	// i は0始まりのデータ行。ヘッダーを含めたCSV上の行番号に直す。
	return fmt.Errorf("%w: line %d column %s: %v", domain.ErrMalformedRow, i+2, column, err)
}
