package queue

import (
	"context"
	"hash/fnv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/openlearn/provisioning/internal/api/metrics"
	"github.com/openlearn/provisioning/internal/core/domain"
	"github.com/openlearn/provisioning/internal/core/ports"
)

const defaultWorkers = 8

// LearnerFinder resolves a learner so requests addressed by email and by
// username share a shard.
type LearnerFinder interface {
	FindUser(ctx context.Context, q domain.UserQuery) (*domain.User, error)
}

// BatchRunner implements ports.BatchEnroller. It fans a batch of enrollment
// requests out to a fixed set of workers. Requests are sharded by learner, so
// requests for the same learner run in submission order on the same worker
// whichever identifier they use.
type BatchRunner struct {
	workers int
	service ports.EnrollmentService
	users   LearnerFinder
	log     zerolog.Logger
}

// NewBatchRunner creates a BatchRunner with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used. users may be nil, in which case
// learners are keyed by the identifier the request carries.
func NewBatchRunner(numWorkers int, service ports.EnrollmentService, users LearnerFinder, log zerolog.Logger) *BatchRunner {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &BatchRunner{workers: numWorkers, service: service, users: users, log: log}
}

// Run processes every request and returns the results in request order. It
// returns once all workers are done. Requests not started before ctx is
// cancelled report ctx.Err().
func (b *BatchRunner) Run(ctx context.Context, inputs []ports.CreateEnrollmentInput) []ports.EnrollmentResult {
	start := time.Now()
	defer func() { metrics.BatchEnrollmentDuration.Observe(time.Since(start).Seconds()) }()

	results := make([]ports.EnrollmentResult, len(inputs))
	shards := make([][]int, b.workers)
	keys := make(map[string]string)
	for i, in := range inputs {
		s := shardIndex(b.shardKey(ctx, in, keys), b.workers)
		shards[s] = append(shards[s], i)
	}

	g, gctx := errgroup.WithContext(ctx)
	for id, shard := range shards {
		if len(shard) == 0 {
			continue
		}
		g.Go(func() error {
			for _, i := range shard {
				results[i] = b.runOne(gctx, id, inputs[i])
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		b.log.Warn().Err(err).Int("requests", len(inputs)).Msg("batch enrollment interrupted")
	}

	return results
}

// shardKey returns the username behind a request. Emails are resolved once
// per batch through keys; an email that cannot be resolved keys on its
// lowercased form.
func (b *BatchRunner) shardKey(ctx context.Context, in ports.CreateEnrollmentInput, keys map[string]string) string {
	if in.Email == "" {
		return in.Username
	}
	email := strings.ToLower(in.Email)
	if key, ok := keys[email]; ok {
		return key
	}
	key := email
	if b.users != nil {
		if u, err := b.users.FindUser(ctx, domain.UserQuery{Email: in.Email}); err == nil {
			key = u.Username
		}
	}
	keys[email] = key
	return key
}

func (b *BatchRunner) runOne(ctx context.Context, workerID int, in ports.CreateEnrollmentInput) ports.EnrollmentResult {
	res := ports.EnrollmentResult{Input: in}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	res.Enrollment, res.Errors, res.Err = b.service.Create(ctx, in)
	if res.Err != nil {
		b.log.Error().Err(res.Err).
			Str("learner", in.Learner()).
			Str("course_id", in.CourseID).
			Int("worker_id", workerID).
			Msg("batch enrollment failed")
	}
	return res
}

// shardIndex maps a learner key deterministically to a worker index.
func shardIndex(key string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}
