package adapters

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"stock_pipeline/internal/feature/marketdata/domain/entity"
	"stock_pipeline/internal/feature/marketdata/usecase"
)

// csvStore はレコードセットを日付範囲付きのファイル名でローカルディレクトリに保存します。
type csvStore struct {
	dir    string
	create func(path string) (io.WriteCloser, error)
}

var _ usecase.RecordStore = (*csvStore)(nil)

// NewCSVStore は指定ディレクトリに保存する csvStore を生成します。dir が空の場合はカレントディレクトリです。
func NewCSVStore(dir string) *csvStore {
	if dir == "" {
		dir = "."
	}
	return &csvStore{dir: dir, create: createFile}
}

func createFile(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// Path は日付範囲から決まるファイル名をこのストアのディレクトリに結合します。
func (s *csvStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// SavePrices は価格レコードセットを stocks_df_<from>_<to>.csv に保存します。
func (s *csvStore) SavePrices(r entity.DateRange, records []entity.PriceRecord) (string, error) {
	path := s.Path(entity.PriceFileName(r))
	return path, s.write(path, func(w io.Writer) error { return EncodePrices(w, records) })
}

// SaveSentiments はセンチメントレコードセットを stocks_sentiment_df_<from>_<to>.csv に保存します。
func (s *csvStore) SaveSentiments(r entity.DateRange, records []entity.SentimentRecord) (string, error) {
	path := s.Path(entity.SentimentFileName(r))
	return path, s.write(path, func(w io.Writer) error { return EncodeSentiments(w, records) })
}

// write は encode の結果をファイルに書き出します。Close の失敗も書き込み失敗として返します。
func (s *csvStore) write(path string, encode func(io.Writer) error) (err error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := s.create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			if err == nil {
				err = fmt.Errorf("close %s: %w", path, cerr)
				return
			}
			slog.Warn("failed to close record file", "path", path, "error", cerr)
		}
	}()
	if err := encode(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
