package kubernetes

import (
	"context"
	"fmt"
	"sync"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	vahtierrors "github.com/yairfalse/vahti/internal/errors"
	"github.com/yairfalse/vahti/internal/logger"
	"github.com/yairfalse/vahti/pkg/types"
)

// Collector captures one snapshot of the workload kinds vahti watches:
// cronjobs, jobs, deployments, statefulsets and pods.
type Collector struct {
	client     *Client
	log        logger.Logger
	namespaces []string
}

// listResult reports one kind's collection outcome
type listResult struct {
	kind  string
	count int
	err   error
}

// NewCollector creates a collector limited to the given namespaces.
// An empty namespace list means the whole cluster.
func NewCollector(client *Client, log logger.Logger, namespaces []string) *Collector {
	return &Collector{
		client:     client,
		log:        log,
		namespaces: namespaces,
	}
}

// Collect lists all five workload kinds concurrently and assembles a
// snapshot. The kinds write disjoint partitions, so the only
// coordination needed is waiting for all of them. Any list failure
// aborts the whole snapshot: a partial snapshot would later read as a
// wave of deletions.
func (c *Collector) Collect(ctx context.Context) (*types.Snapshot, error) {
	snapshot := types.NewSnapshot(time.Now())

	namespaces := c.namespaces
	if len(namespaces) == 0 {
		namespaces = []string{metav1.NamespaceAll}
	}

	collectCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan listResult, 5)
	var wg sync.WaitGroup

	collect := func(kind string, fn func(context.Context, string, *types.Snapshot) (int, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			total := 0
			for _, namespace := range namespaces {
				count, err := fn(collectCtx, namespace, snapshot)
				if err != nil {
					results <- listResult{kind: kind, err: err}
					return
				}
				total += count
			}
			results <- listResult{kind: kind, count: total}
		}()
	}

	collect("CronJobs", c.collectCronJobs)
	collect("Jobs", c.collectJobs)
	collect("Deployments", c.collectDeployments)
	collect("StatefulSets", c.collectStatefulSets)
	collect("Pods", c.collectPods)

	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	var failedKind string
	for result := range results {
		if result.err != nil {
			if firstErr == nil {
				firstErr = result.err
				failedKind = result.kind
				cancel()
			}
			continue
		}
		c.log.WithFields(map[string]interface{}{
			"kind":  result.kind,
			"count": result.count,
		}).Info("collected")
	}

	if firstErr != nil {
		if apierrors.IsForbidden(firstErr) {
			return nil, vahtierrors.KubernetesPermissionError(failedKind, firstErr)
		}
		return nil, fmt.Errorf("failed to collect %s: %w", failedKind, firstErr)
	}

	snapshot.Metadata.End = time.Now().UTC().Format(time.RFC3339)
	return snapshot, nil
}

func (c *Collector) collectCronJobs(ctx context.Context, namespace string, snapshot *types.Snapshot) (int, error) {
	items, err := c.client.CronJobs(ctx, namespace)
	if err != nil {
		return 0, err
	}
	for i := range items {
		snapshot.CronJobs[items[i].Name] = normalizeCronJob(&items[i])
	}
	return len(items), nil
}

func (c *Collector) collectJobs(ctx context.Context, namespace string, snapshot *types.Snapshot) (int, error) {
	items, err := c.client.Jobs(ctx, namespace)
	if err != nil {
		return 0, err
	}
	for i := range items {
		snapshot.Jobs[items[i].Name] = normalizeJob(&items[i])
	}
	return len(items), nil
}

func (c *Collector) collectDeployments(ctx context.Context, namespace string, snapshot *types.Snapshot) (int, error) {
	items, err := c.client.Deployments(ctx, namespace)
	if err != nil {
		return 0, err
	}
	for i := range items {
		snapshot.Deployments[items[i].Name] = normalizeDeployment(&items[i])
	}
	return len(items), nil
}

func (c *Collector) collectStatefulSets(ctx context.Context, namespace string, snapshot *types.Snapshot) (int, error) {
	items, err := c.client.StatefulSets(ctx, namespace)
	if err != nil {
		return 0, err
	}
	for i := range items {
		snapshot.StatefulSets[items[i].Name] = normalizeStatefulSet(&items[i])
	}
	return len(items), nil
}

func (c *Collector) collectPods(ctx context.Context, namespace string, snapshot *types.Snapshot) (int, error) {
	items, err := c.client.Pods(ctx, namespace)
	if err != nil {
		return 0, err
	}
	for i := range items {
		snapshot.Pods[items[i].Name] = normalizePod(&items[i])
	}
	return len(items), nil
}
