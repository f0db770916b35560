package gcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"cloud.google.com/go/storage"
)

// StorageClient は GCS クライアントを初回利用時に生成し、アップロードと読み出しを行います。
type StorageClient struct {
	creds *CredentialBlock

	once   sync.Once
	client *storage.Client
	err    error
}

// NewStorageClient は新しい StorageClient を生成します。creds が nil なら ADC を使います。
func NewStorageClient(creds *CredentialBlock) *StorageClient {
	return &StorageClient{creds: creds}
}

func (s *StorageClient) get(ctx context.Context) (*storage.Client, error) {
	s.once.Do(func() {
		s.client, s.err = storage.NewClient(ctx, clientOptions(s.creds)...)
	})
	if s.err != nil {
		return nil, fmt.Errorf("create storage client: %w", s.err)
	}
	return s.client, nil
}

// UploadFile はローカルファイルを gs://bucket/objectName にアップロードします。同名オブジェクトは上書きされます。
func (s *StorageClient) UploadFile(ctx context.Context, bucket, localPath, objectName string) error {
	client, err := s.get(ctx)
	if err != nil {
		return err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close upload source", "path", localPath, "error", err)
		}
	}()

	// コピーに失敗した場合は ctx をキャンセルして書きかけのオブジェクトを破棄する
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := client.Bucket(bucket).Object(objectName).NewWriter(wctx)
	if _, err := io.Copy(w, f); err != nil {
		cancel()
		_ = w.Close()
		return fmt.Errorf("upload gs://%s/%s: %w", bucket, objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize gs://%s/%s: %w", bucket, objectName, err)
	}
	return nil
}

// OpenObject は gs://bucket/name のリーダーを返します。呼び出し側で Close してください。
func (s *StorageClient) OpenObject(ctx context.Context, bucket, name string) (io.ReadCloser, error) {
	client, err := s.get(ctx)
	if err != nil {
		return nil, err
	}
	r, err := client.Bucket(bucket).Object(name).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Close は生成済みのクライアントを閉じます。
func (s *StorageClient) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
