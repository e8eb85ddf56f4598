package protocol

import "testing"

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   Response
		wantOK bool
	}{
		{
			name:   "ok with length",
			line:   "OK|15000\r\n",
			want:   Response{OK: true, Length: 15000},
			wantOK: true,
		},
		{
			name:   "ok zero length",
			line:   "OK|0",
			want:   Response{OK: true},
			wantOK: true,
		},
		{
			name:   "bad no image",
			line:   "BAD|NO_IMAGE\r\n",
			want:   Response{Reason: ReasonNoImage},
			wantOK: true,
		},
		{
			name:   "bad command",
			line:   "BAD|BAD_CMD",
			want:   Response{Reason: ReasonBadCommand},
			wantOK: true,
		},
		{
			name:   "ok with garbage length is a failure, not noise",
			line:   "OK|fifteen",
			want:   Response{Reason: "UNPARSABLE_LENGTH"},
			wantOK: true,
		},
		{
			name: "plain noise skipped",
			line: "boot: uart ready",
		},
		{
			name: "empty line skipped",
			line: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseResponse(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("ParseResponse(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Fatalf("ParseResponse(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestFormatResponses(t *testing.T) {
	if got := FormatOK(15000); got != "OK|15000\r\n" {
		t.Fatalf("FormatOK = %q", got)
	}
	if got := FormatBad(ReasonNoFile); got != "BAD|NO_FILE\r\n" {
		t.Fatalf("FormatBad = %q", got)
	}
}
