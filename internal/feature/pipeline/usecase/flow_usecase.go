package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	jsentity "stock_pipeline/internal/feature/jobsubmit/domain/entity"
	mdentity "stock_pipeline/internal/feature/marketdata/domain/entity"
	"stock_pipeline/internal/feature/pipeline/domain/entity"
	stusecase "stock_pipeline/internal/feature/staging/usecase"
	"stock_pipeline/internal/shared/ratelimiter"
)

// DefaultStepPause は価格取得とセンチメント取得の間、およびステージングとジョブ投入の間の待ち時間です。
const DefaultStepPause = 60 * time.Second

// FlowConfig は1回の実行で固定の設定です。
type FlowConfig struct {
	Catalog   mdentity.Catalog
	Job       jsentity.JobRequest // Range は実行ごとに上書きされる
	JobPath   string              // ステージするジョブソースのローカルパス
	StepPause time.Duration
	Burst     int
	RatePause time.Duration
}

// FlowUsecase は取得 → ステージング → ジョブ投入を固定の順序と待ち時間で実行します。
type FlowUsecase struct {
	prices     PriceFetcher
	sentiments SentimentFetcher
	stager     Stager
	submitter  Submitter
	runs       RunRepository
	locker     RunLocker
	cfg        FlowConfig

	sleep      func(time.Duration)
	now        func() time.Time
	newLimiter LimiterFactory

	wg sync.WaitGroup // Start で起動した実行
}

// Option は FlowUsecase の依存を差し替えます。
type Option func(*FlowUsecase)

// WithSleep は待機処理を差し替えます。
func WithSleep(sleep func(time.Duration)) Option {
	return func(f *FlowUsecase) { f.sleep = sleep }
}

// WithClock は現在時刻の取得を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(f *FlowUsecase) { f.now = now }
}

// WithLimiterFactory はレートリミッターの生成を差し替えます。
func WithLimiterFactory(newLimiter LimiterFactory) Option {
	return func(f *FlowUsecase) { f.newLimiter = newLimiter }
}

// NewFlowUsecase は新しい FlowUsecase を作成します。runs と locker は nil でも動作します。
func NewFlowUsecase(
	prices PriceFetcher,
	sentiments SentimentFetcher,
	stager Stager,
	submitter Submitter,
	runs RunRepository,
	locker RunLocker,
	cfg FlowConfig,
	opts ...Option,
) *FlowUsecase {
	if cfg.StepPause < 0 {
		cfg.StepPause = DefaultStepPause
	}
	if len(cfg.Catalog) == 0 {
		cfg.Catalog = mdentity.DefaultCatalog()
	}
	f := &FlowUsecase{
		prices:     prices,
		sentiments: sentiments,
		stager:     stager,
		submitter:  submitter,
		runs:       runs,
		locker:     locker,
		cfg:        cfg,
		sleep:      time.Sleep,
		now:        time.Now,
	}
	f.newLimiter = func() ratelimiter.RateLimiterInterface {
		return ratelimiter.NewCallLimiter(cfg.Burst, cfg.RatePause, ratelimiter.WithSleep(f.sleep))
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run は日付範囲に対して1回のパイプラインを同期実行します。
// 同じ範囲の実行中は domain.ErrRunInProgress を返します。
func (f *FlowUsecase) Run(ctx context.Context, r mdentity.DateRange) (*entity.Run, error) {
	release, err := f.acquire(ctx, r)
	if err != nil {
		return nil, err
	}
	defer release()

	run := entity.NewRun(r, f.now())
	err = f.execute(ctx, run)
	return run, err
}

// Start はロックを取得して実行を開始し、完了を待たずに実行記録を返します。
// 実行はリクエストのキャンセルに影響されません。
func (f *FlowUsecase) Start(ctx context.Context, r mdentity.DateRange) (*entity.Run, error) {
	release, err := f.acquire(ctx, r)
	if err != nil {
		return nil, err
	}

	run := entity.NewRun(r, f.now())
	f.save(ctx, run)

	snapshot := *run
	bg := context.WithoutCancel(ctx)
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer release()
		_ = f.execute(bg, run)
	}()
	return &snapshot, nil
}

// Wait は Start で開始したすべての実行が終わり、ロックが解放されるまで待ちます。
func (f *FlowUsecase) Wait() {
	f.wg.Wait()
}

// History は最近の実行記録を返します。
func (f *FlowUsecase) History(ctx context.Context, limit int) ([]entity.Run, error) {
	if f.runs == nil {
		return []entity.Run{}, nil
	}
	return f.runs.ListRecent(ctx, limit)
}

func (f *FlowUsecase) acquire(ctx context.Context, r mdentity.DateRange) (func(), error) {
	if f.locker == nil {
		return func() {}, nil
	}
	return f.locker.Acquire(ctx, "pipeline:run:"+r.Suffix())
}

func (f *FlowUsecase) execute(ctx context.Context, run *entity.Run) error {
	r := run.Range
	slog.Info("pipeline run started", "run_id", run.ID, "from", r.From, "to", r.To)

	prices, err := f.prices.FetchPrices(ctx, f.newLimiter(), f.cfg.Catalog, r)
	if err != nil {
		return f.fail(ctx, run, fmt.Errorf("fetch prices: %w", err))
	}
	run.PriceRecords = len(prices.Records)
	run.PriceSkips = len(prices.Skips)
	run.APICalls += prices.Calls

	slog.Info("pausing between stock and sentiment data fetch", "pause", f.cfg.StepPause)
	f.sleep(f.cfg.StepPause)

	sentiments, err := f.sentiments.FetchSentiments(ctx, f.newLimiter(), f.cfg.Catalog, r)
	if err != nil {
		return f.fail(ctx, run, fmt.Errorf("fetch sentiments: %w", err))
	}
	run.SentimentRecords = len(sentiments.Records)
	run.SentimentSkips = len(sentiments.Skips)
	run.APICalls += sentiments.Calls

	staged, err := f.stager.Stage(ctx, r, stusecase.Artifacts{
		PricePath:     prices.Path,
		SentimentPath: sentiments.Path,
		JobPath:       f.cfg.JobPath,
	})
	run.StagedObjects = staged
	if err != nil {
		return f.fail(ctx, run, fmt.Errorf("stage artifacts: %w", err))
	}

	slog.Info("pausing before submitting transform job", "pause", f.cfg.StepPause)
	f.sleep(f.cfg.StepPause)

	req := f.cfg.Job
	req.Range = r
	sub := f.submitter.Submit(ctx, req)
	run.SubmitMode = sub.Mode
	run.SubmitExitCode = sub.ExitCode
	run.Message = sub.Message
	run.Status = entity.RunSucceeded
	if !sub.OK {
		run.Status = entity.RunSubmitFailed
	}

	run.FinishedAt = f.now()
	slog.Info("job complete",
		"run_id", run.ID, "status", run.Status,
		"took", entity.FormatElapsed(run.Elapsed()),
		"prices", run.PriceRecords, "sentiments", run.SentimentRecords, "api_calls", run.APICalls)
	f.save(ctx, run)
	return nil
}

func (f *FlowUsecase) fail(ctx context.Context, run *entity.Run, err error) error {
	run.Status = entity.RunFailed
	run.Message = err.Error()
	run.FinishedAt = f.now()
	slog.Error("pipeline run failed", "run_id", run.ID, "took", entity.FormatElapsed(run.Elapsed()), "error", err)
	f.save(ctx, run)
	return err
}

// save は実行記録を保存します。保存に失敗しても実行自体は失敗にしません。
func (f *FlowUsecase) save(ctx context.Context, run *entity.Run) {
	if f.runs == nil {
		return
	}
	if err := f.runs.Save(ctx, run); err != nil {
		slog.Warn("failed to save run record", "run_id", run.ID, "error", err)
	}
}
