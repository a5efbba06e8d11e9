package docconv

import "testing"

func TestNormalizeMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trailing whitespace",
			input: "hello   \nworld   \n",
			want:  "hello\nworld",
		},
		{
			name:  "multiple newlines",
			input: "hello\n\n\n\n\nworld",
			want:  "hello\n\nworld",
		},
		{
			name:  "crlf",
			input: "hello\r\nworld\r\n",
			want:  "hello\nworld",
		},
		{
			name:  "bare cr",
			input: "hello\rworld",
			want:  "hello\nworld",
		},
		{
			name:  "control characters",
			input: "hello\x00world\x01test",
			want:  "helloworldtest",
		},
		{
			name:  "tabs survive",
			input: "a\tb\tc",
			want:  "a\tb\tc",
		},
		{
			name:  "invalid utf8 dropped",
			input: "caf\xff\xfe test",
			want:  "caf test",
		},
		{
			name:  "surrounding blank lines",
			input: "\n\n\n# Title\n\nbody\n\n\n",
			want:  "# Title\n\nbody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeMarkdown(tt.input)
			if got != tt.want {
				t.Errorf("normalizeMarkdown(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
