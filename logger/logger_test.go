package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		debug     bool
		format    string
		wantDebug bool
		wantErr   bool
	}{
		{name: "既定はinfoレベルのconsole", wantDebug: false},
		{name: "debugを有効にするとdebugレベル", debug: true, format: "json", wantDebug: true},
		{name: "不明なフォーマットはエラー", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l, err := New(tt.debug, tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatal("error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() failed: %v", err)
			}

			if got := l.Core().Enabled(zapcore.DebugLevel); got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}
