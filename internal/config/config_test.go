package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		want    *Config
		wantErr string
	}{
		{
			name: "defaults",
			want: &Config{Trace: trace{GDB: "gdb", MaxStops: 128}},
		},
		{
			name: "file",
			yaml: "debug: true\ndump-state: true\ntrace:\n  gdb: /usr/bin/gdb-multiarch\n  max-stops: 16\n",
			want: &Config{Debug: true, DumpState: true, Trace: trace{GDB: "/usr/bin/gdb-multiarch", MaxStops: 16}},
		},
		{
			name: "env overrides file",
			yaml: "trace:\n  max-stops: 16\n",
			env:  map[string]string{"WINRUN_TRACE_MAX_STOPS": "32", "WINRUN_VERBOSE": "true"},
			want: &Config{Verbose: true, Trace: trace{GDB: "gdb", MaxStops: 32}},
		},
		{
			name:    "max stops out of range",
			yaml:    "trace:\n  max-stops: 5000\n",
			wantErr: "trace.max-stops",
		},
		{
			name:    "negative max stops",
			yaml:    "trace:\n  max-stops: -1\n",
			wantErr: "trace.max-stops",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, val := range tt.env {
				t.Setenv(k, val)
			}

			v := viper.New()
			v.SetEnvPrefix("winrun")
			v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
			v.AutomaticEnv()
			SetDefaults(v)
			v.SetDefault("verbose", false)
			if tt.yaml != "" {
				path := filepath.Join(t.TempDir(), "config.yaml")
				if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
					t.Fatal(err)
				}
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					t.Fatal(err)
				}
			}

			got, err := Load(v)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Load() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Load() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
