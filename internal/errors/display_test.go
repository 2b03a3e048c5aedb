package errors

import (
	"bytes"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayError(t *testing.T) {
	// Save original stderr
	oldStderr := os.Stderr

	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name: "Connection Error",
			err:  KubernetesConnectionError("minikube", nil),
			contains: []string{
				"Kubernetes connection failed",
				"Current context 'minikube' is not accessible",
				"kubectl config get-contexts",
				"kubectl cluster-info",
			},
		},
		{
			name: "Storage Error",
			err:  NoSnapshotsError("/snapshots"),
			contains: []string{
				"No snapshots found",
				"/snapshots",
				"vahti snapshot",
			},
		},
		{
			name: "Delivery Error",
			err: SMTPDeliveryError("mail.example.com", fmt.Errorf("connection refused")).
				WithCause("Connection refused by relay"),
			contains: []string{
				"Report delivery failed",
				"Connection refused by relay",
				"nc -vz mail.example.com 25",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create pipe to capture stderr
			r, w, _ := os.Pipe()
			os.Stderr = w

			DisplayError(tt.err)

			// Close writer and read output
			w.Close()
			buf := &bytes.Buffer{}
			buf.ReadFrom(r)
			output := buf.String()

			// Restore stderr
			os.Stderr = oldStderr

			for _, expected := range tt.contains {
				assert.Contains(t, output, expected, "Output should contain: %s", expected)
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "Permission Error",
			err:      KubernetesPermissionError("CronJobs", nil),
			expected: 77, // EX_NOPERM
		},
		{
			name:     "Configuration Error",
			err:      SMTPConfigError("smtp.host"),
			expected: 78, // EX_CONFIG
		},
		{
			name:     "Network Error",
			err:      SMTPDeliveryError("mail.example.com", nil),
			expected: 69, // EX_UNAVAILABLE
		},
		{
			name:     "FileSystem Error",
			err:      NoSnapshotsError("/snapshots"),
			expected: 66, // EX_NOINPUT
		},
		{
			name:     "Generic Error",
			err:      fmt.Errorf("some generic error"),
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exitCode := GetExitCode(tt.err)
			assert.Equal(t, tt.expected, exitCode)
		})
	}
}

func TestIsUserError(t *testing.T) {
	assert.True(t, IsUserError(NoSnapshotsError("/snapshots")))
	assert.False(t, IsUserError(fmt.Errorf("plain failure")))
}

func TestFormatErrorWithContext(t *testing.T) {
	err := KubernetesConnectionError("", fmt.Errorf("dial tcp: i/o timeout")).
		WithSolutions("Check the API server address")

	context := map[string]string{
		"Context":   "production",
		"Namespace": "default",
	}

	output := FormatErrorWithContext(err, context)

	// Check plain text formatting (no colors)
	assert.Contains(t, output, "Kubernetes connection failed")
	assert.Contains(t, output, "Type: Network/Kubernetes")
	assert.Contains(t, output, "Context:")
	assert.Contains(t, output, "Namespace: default")
	assert.Contains(t, output, "1. kubectl config get-contexts")
}
