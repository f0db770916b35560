// Package gcp は Google Cloud (GCS / BigQuery / Dataproc) のクライアントと認証情報をまとめて提供します。
package gcp

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"stock_pipeline/internal/feature/staging/domain"
	"stock_pipeline/internal/feature/staging/usecase"
)

// DefaultScopes はサービスアカウント鍵から認証情報を作るときのスコープです。
var DefaultScopes = []string{"https://www.googleapis.com/auth/cloud-platform"}

// CredentialBlock はサービスアカウント鍵を1度だけ読み込み、各クライアントに共有します。
// 鍵パスが空の場合は Application Default Credentials を使います。
type CredentialBlock struct {
	keyPath string
	scopes  []string

	mu    sync.Mutex
	creds *google.Credentials
}

var _ usecase.CredentialRegistrar = (*CredentialBlock)(nil)

// NewCredentialBlock は新しい CredentialBlock を生成します。
func NewCredentialBlock(keyPath string, scopes ...string) *CredentialBlock {
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	return &CredentialBlock{keyPath: keyPath, scopes: scopes}
}

// Register は鍵ファイルを読み込んで認証情報を登録します。
// 既に登録済みなら domain.ErrCredentialsRegistered を返し、登録済みの認証情報をそのまま使います。
func (b *CredentialBlock) Register(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.creds != nil {
		return domain.ErrCredentialsRegistered
	}

	var (
		creds *google.Credentials
		err   error
	)
	if b.keyPath == "" {
		creds, err = google.FindDefaultCredentials(ctx, b.scopes...)
	} else {
		var key []byte
		key, err = os.ReadFile(b.keyPath)
		if err != nil {
			return fmt.Errorf("read service account key: %w", err)
		}
		creds, err = google.CredentialsFromJSON(ctx, key, b.scopes...)
	}
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	b.creds = creds
	return nil
}

// ProjectID は認証情報に含まれるプロジェクトIDを返します。未登録なら空文字です。
func (b *CredentialBlock) ProjectID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.creds == nil {
		return ""
	}
	return b.creds.ProjectID
}

// ClientOptions は登録済みの認証情報をクライアントオプションとして返します。
// 未登録の場合は nil を返し、クライアント側で ADC が使われます。
func (b *CredentialBlock) ClientOptions() []option.ClientOption {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.creds == nil {
		return nil
	}
	return []option.ClientOption{option.WithCredentials(b.creds)}
}

// clientOptions は creds が nil でも安全にクライアントオプションを返します。
func clientOptions(creds *CredentialBlock, extra ...option.ClientOption) []option.ClientOption {
	var opts []option.ClientOption
	if creds != nil {
		opts = creds.ClientOptions()
	}
	return append(opts, extra...)
}
