package gcp

import (
	"context"
	"fmt"
	"sync"

	dataproc "cloud.google.com/go/dataproc/v2/apiv1"
	"cloud.google.com/go/dataproc/v2/apiv1/dataprocpb"
	"google.golang.org/api/option"
)

// DataprocJobs は Dataproc JobController のリージョンエンドポイントに対するクライアントです。
// クライアントは初回投入時に生成するため、ステージングで登録された認証情報が使われます。
type DataprocJobs struct {
	region string
	creds  *CredentialBlock

	once   sync.Once
	client *dataproc.JobControllerClient
	err    error
}

// Endpoint はリージョンごとの Dataproc API エンドポイントです。
func Endpoint(region string) string {
	return fmt.Sprintf("%s-dataproc.googleapis.com:443", region)
}

// NewDataprocJobs は region のエンドポイントに接続する DataprocJobs を生成します。
func NewDataprocJobs(region string, creds *CredentialBlock) *DataprocJobs {
	return &DataprocJobs{region: region, creds: creds}
}

func (d *DataprocJobs) get(ctx context.Context) (*dataproc.JobControllerClient, error) {
	d.once.Do(func() {
		d.client, d.err = dataproc.NewJobControllerClient(ctx,
			clientOptions(d.creds, option.WithEndpoint(Endpoint(d.region)))...)
	})
	if d.err != nil {
		return nil, fmt.Errorf("create dataproc client: %w", d.err)
	}
	return d.client, nil
}

// SubmitJob はジョブを投入します。投入が受け付けられた時点で返り、完了は待ちません。
func (d *DataprocJobs) SubmitJob(ctx context.Context, req *dataprocpb.SubmitJobRequest) (*dataprocpb.Job, error) {
	client, err := d.get(ctx)
	if err != nil {
		return nil, err
	}
	return client.SubmitJob(ctx, req)
}

// Close は生成済みのクライアントを閉じます。
func (d *DataprocJobs) Close() error {
	if d.client == nil {
		return nil
	}
	return d.client.Close()
}
