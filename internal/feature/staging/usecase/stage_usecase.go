// Package usecase はレコードセットと変換ジョブをオブジェクトストレージに配置するユースケースを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	mdentity "stock_pipeline/internal/feature/marketdata/domain/entity"
	"stock_pipeline/internal/feature/staging/domain"
)

// CredentialRegistrar はクラウド認証情報を登録します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type CredentialRegistrar interface {
	Register(ctx context.Context) error
}

// ObjectUploader はローカルファイルをバケットにアップロードします。
type ObjectUploader interface {
	UploadFile(ctx context.Context, bucket, localPath, objectName string) error
}

// Artifacts はステージング対象のローカルファイルです。
type Artifacts struct {
	PricePath     string
	SentimentPath string
	JobPath       string // 変換ジョブのソース
}

// StageUsecase は変換ジョブが日付範囲から決まる名前で読めるように、3つのファイルをバケットに配置します。
type StageUsecase struct {
	creds    CredentialRegistrar
	uploader ObjectUploader
	bucket   string
}

// NewStageUsecase は新しい StageUsecase を作成します。
func NewStageUsecase(creds CredentialRegistrar, uploader ObjectUploader, bucket string) *StageUsecase {
	return &StageUsecase{creds: creds, uploader: uploader, bucket: bucket}
}

// Stage は認証情報を登録してから、価格CSV、センチメントCSV、変換ジョブをアップロードします。
// 認証情報の登録失敗は「登録済み」とみなして続行します。アップロードの失敗はエラーとして返します。
// 同じ日付範囲で再実行した場合は同名オブジェクトを上書きします。
func (su *StageUsecase) Stage(ctx context.Context, r mdentity.DateRange, a Artifacts) ([]string, error) {
	if err := su.creds.Register(ctx); err != nil {
		if errors.Is(err, domain.ErrCredentialsRegistered) {
			slog.Info("cloud credentials already registered, reusing")
		} else {
			slog.Warn("cloud credentials registration failed, assuming already registered", "error", err)
		}
	} else {
		slog.Info("cloud credentials registered")
	}

	uploads := []struct {
		local  string
		object string
	}{
		{a.PricePath, mdentity.PriceFileName(r)},
		{a.SentimentPath, mdentity.SentimentFileName(r)},
		{a.JobPath, filepath.Base(a.JobPath)},
	}

	objects := make([]string, 0, len(uploads))
	for _, u := range uploads {
		if err := su.uploader.UploadFile(ctx, su.bucket, u.local, u.object); err != nil {
			return objects, fmt.Errorf("upload %s to gs://%s/%s: %w", u.local, su.bucket, u.object, err)
		}
		slog.Info("uploaded", "local", u.local, "object", "gs://"+su.bucket+"/"+u.object)
		objects = append(objects, u.object)
	}
	return objects, nil
}
