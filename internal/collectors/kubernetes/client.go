package kubernetes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// ClientOptions configures how the cluster connection is built
type ClientOptions struct {
	Kubeconfig         string
	Context            string
	InsecureSkipVerify bool
}

// Client handles the Kubernetes API interactions vahti needs
type Client struct {
	clientset kubernetes.Interface
}

// NewClient creates a client, preferring in-cluster credentials and
// falling back to kubeconfig
func NewClient(opts ClientOptions) (*Client, error) {
	config, err := buildConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get Kubernetes config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	return &Client{clientset: clientset}, nil
}

// NewClientFromInterface wraps an existing clientset, used with fakes
// in tests
func NewClientFromInterface(clientset kubernetes.Interface) *Client {
	return &Client{clientset: clientset}
}

// buildConfig returns the Kubernetes configuration
func buildConfig(opts ClientOptions) (*rest.Config, error) {
	config, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	if opts.InsecureSkipVerify {
		// Insecure mode cannot carry CA material at the same time
		config.TLSClientConfig.Insecure = true
		config.TLSClientConfig.CAFile = ""
		config.TLSClientConfig.CAData = nil
	}

	return config, nil
}

func loadConfig(opts ClientOptions) (*rest.Config, error) {
	// First try in-cluster config
	if config, err := rest.InClusterConfig(); err == nil {
		return config, nil
	}

	// Then try kubeconfig file
	kubeconfig := opts.Kubeconfig
	if kubeconfig == "" {
		if home := homeDir(); home != "" {
			kubeconfig = filepath.Join(home, ".kube", "config")
		}
	}

	configLoadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfig != "" {
		configLoadingRules.ExplicitPath = kubeconfig
	}

	configOverrides := &clientcmd.ConfigOverrides{}
	if opts.Context != "" {
		configOverrides.CurrentContext = opts.Context
	}

	config, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		configLoadingRules,
		configOverrides,
	).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	return config, nil
}

// CronJobs returns all cronjobs in the specified namespace
func (c *Client) CronJobs(ctx context.Context, namespace string) ([]batchv1.CronJob, error) {
	cronJobs, err := c.clientset.BatchV1().CronJobs(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list cronjobs: %w", err)
	}

	return cronJobs.Items, nil
}

// Jobs returns all jobs in the specified namespace
func (c *Client) Jobs(ctx context.Context, namespace string) ([]batchv1.Job, error) {
	jobs, err := c.clientset.BatchV1().Jobs(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs.Items, nil
}

// Deployments returns all deployments in the specified namespace
func (c *Client) Deployments(ctx context.Context, namespace string) ([]appsv1.Deployment, error) {
	deployments, err := c.clientset.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments: %w", err)
	}

	return deployments.Items, nil
}

// StatefulSets returns all statefulsets in the specified namespace
func (c *Client) StatefulSets(ctx context.Context, namespace string) ([]appsv1.StatefulSet, error) {
	statefulSets, err := c.clientset.AppsV1().StatefulSets(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list statefulsets: %w", err)
	}

	return statefulSets.Items, nil
}

// Pods returns all pods in the specified namespace
func (c *Client) Pods(ctx context.Context, namespace string) ([]corev1.Pod, error) {
	pods, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}

	return pods.Items, nil
}

// homeDir returns the user's home directory
func homeDir() string {
	if h := os.Getenv("HOME"); h != "" {
		return h
	}
	return os.Getenv("USERPROFILE") // Windows
}
