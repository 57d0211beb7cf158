package finding

import "testing"

func TestStatusTerminal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, false},
		{StatusCompleted, true},
		{StatusFailed, true},
		{StatusSkipped, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("Status(%q).Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestServerScanResultSafeToolCount(t *testing.T) {
	t.Parallel()

	r := &ServerScanResult{
		Status: StatusCompleted,
		Tools: []ToolScanResult{
			{Name: "read_file", IsSafe: true, Status: StatusCompleted},
			{Name: "exec_shell", IsSafe: false, Status: StatusCompleted},
			{Name: "list_dir", IsSafe: true, Status: StatusCompleted},
		},
	}
	if got := r.SafeToolCount(); got != 2 {
		t.Errorf("SafeToolCount() = %d, want 2", got)
	}

	empty := &ServerScanResult{Status: StatusFailed}
	if got := empty.SafeToolCount(); got != 0 {
		t.Errorf("SafeToolCount() on empty result = %d, want 0", got)
	}
}
