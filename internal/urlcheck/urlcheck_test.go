package urlcheck

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{
			name:   "plain https",
			raw:    "https://example.com/a?x=1",
			want:   "https://example.com/a?x=1",
			wantOK: true,
		},
		{
			name:   "host only gets root path",
			raw:    "https://a.example",
			want:   "https://a.example/",
			wantOK: true,
		},
		{
			name:   "http allowed",
			raw:    "http://example.com/",
			want:   "http://example.com/",
			wantOK: true,
		},
		{
			name:   "scheme and host lowercased",
			raw:    "HTTPS://Example.COM/Path",
			want:   "https://example.com/Path",
			wantOK: true,
		},
		{
			name:   "surrounding whitespace trimmed",
			raw:    "  https://example.com  ",
			want:   "https://example.com/",
			wantOK: true,
		},
		{
			name:   "javascript scheme rejected",
			raw:    "javascript:alert(1)",
			wantOK: false,
		},
		{
			name:   "data scheme rejected",
			raw:    "data:text/html,<script>alert(1)</script>",
			wantOK: false,
		},
		{
			name:   "ftp scheme rejected",
			raw:    "ftp://example.com/file",
			wantOK: false,
		},
		{
			name:   "relative url rejected",
			raw:    "/just/a/path",
			wantOK: false,
		},
		{
			name:   "scheme without host rejected",
			raw:    "https://",
			wantOK: false,
		},
		{
			name:   "empty rejected",
			raw:    "",
			wantOK: false,
		},
		{
			name:   "garbage rejected",
			raw:    "not a url at all",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("Normalize(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
