package request_test

import (
	"errors"
	"testing"

	"github.com/samiBendou/sca-automation/internal/config"
	"github.com/samiBendou/sca-automation/internal/dataset"
	"github.com/samiBendou/sca-automation/internal/request"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name   string
		req    request.Request
		prefix string
		suffix string
		want   string
	}{
		{
			name: "basename of serial port",
			req:  request.Request{Name: "/dev/ttyUSB1", Iterations: 256, Mode: dataset.ModeHardware, Direction: dataset.DirectionEncrypt},
			want: "ttyUSB1_hw_enc_256",
		},
		{
			name:   "chunks multiply iterations",
			req:    request.Request{Name: "cmd", Iterations: 100, Chunks: 4, Mode: dataset.ModeSoftware, Direction: dataset.DirectionDecrypt},
			suffix: "_leak.csv",
			want:   "cmd_sw_dec_400_leak.csv",
		},
		{
			name:   "explicit prefix",
			req:    request.Request{Name: "ignored", Iterations: 8, Mode: dataset.ModeHardware, Direction: dataset.DirectionEncrypt},
			prefix: "bench",
			suffix: ".log",
			want:   "bench_hw_enc_8.log",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.Filename(tt.prefix, tt.suffix); got != tt.want {
				t.Fatalf("Filename = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		req  request.Request
		want string
	}{
		{request.Request{Iterations: 256, Mode: dataset.ModeHardware, Direction: dataset.DirectionEncrypt}, "sca -t 256 -h"},
		{request.Request{Iterations: 16, Mode: dataset.ModeSoftware, Direction: dataset.DirectionDecrypt, Verbose: true}, "sca -t 16 -v -i"},
		{request.Request{Iterations: 1, Mode: dataset.ModeHardware, Direction: dataset.DirectionDecrypt, Verbose: true}, "sca -t 1 -v -h -i"},
	}
	for _, tt := range tests {
		if got := tt.req.Command(request.CommandName); got != tt.want {
			t.Errorf("Command = %q, want %q", got, tt.want)
		}
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Acquisition.Chunks = 3
	cfg.Acquisition.Direction = "dec"

	req := request.FromConfig(&cfg)
	if req.Direction != dataset.DirectionDecrypt || req.Mode != dataset.ModeHardware {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.ChunkCount() != 3 || req.Total() != 3*cfg.Acquisition.Iterations {
		t.Fatalf("ChunkCount=%d Total=%d", req.ChunkCount(), req.Total())
	}
	if (request.Request{}).ChunkCount() != 1 {
		t.Fatal("zero chunks must count as one acquisition")
	}
}

func TestCaptureName(t *testing.T) {
	req := request.Request{Name: "cmd", Iterations: 10, Mode: dataset.ModeHardware, Direction: dataset.DirectionEncrypt}
	if got := req.CaptureName(0); got != "cmd_hw_enc_10.log" {
		t.Fatalf("CaptureName = %q", got)
	}
	req.Chunks = 2
	if got := req.CaptureName(1); got != "cmd_hw_enc_20_2.log" {
		t.Fatalf("chunked CaptureName = %q", got)
	}
	if req.Base() != "cmd_hw_enc_20" {
		t.Fatalf("Base = %q", req.Base())
	}
}

func TestParseCaptureName(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		wantBase  string
		wantChunk int
		wantName  string
	}{
		{name: "unchunked", file: "bench_hw_enc_256.log", wantBase: "bench_hw_enc_256", wantName: "bench"},
		{name: "compressed chunk", file: "bench_sw_dec_400_3.log.zst", wantBase: "bench_sw_dec_400", wantChunk: 2, wantName: "bench"},
		{name: "underscored name", file: "/tmp/board_a_hw_enc_8.log", wantBase: "board_a_hw_enc_8", wantName: "board_a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, chunk, err := request.ParseCaptureName(tt.file)
			if err != nil {
				t.Fatalf("ParseCaptureName: %v", err)
			}
			if req.Base() != tt.wantBase || chunk != tt.wantChunk || req.Name != tt.wantName {
				t.Fatalf("got base %q chunk %d name %q", req.Base(), chunk, req.Name)
			}
		})
	}

	for _, bad := range []string{"capture.log", "bench_xx_enc_2.log", "bench_hw_enc_0.log", "hw_enc_2.log"} {
		if _, _, err := request.ParseCaptureName(bad); !errors.Is(err, request.ErrCaptureName) {
			t.Fatalf("ParseCaptureName(%q) err = %v, want ErrCaptureName", bad, err)
		}
	}
}

func TestFilenameSanitizesPrefix(t *testing.T) {
	req := request.Request{Iterations: 2, Mode: dataset.ModeHardware, Direction: dataset.DirectionEncrypt}
	if got := req.Filename(`run: "a"*b?`, ".log"); got != "run--a-b_hw_enc_2.log" {
		t.Fatalf("Filename = %q", got)
	}
}
