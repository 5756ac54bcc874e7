package normalizer

import "testing"

func TestStripInlineStylesAndClasses(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain text", in: "  just text  ", want: "just text"},
		{
			name: "style and class removed",
			in:   `<p style="color:red" class="lead">Hello</p>`,
			want: `<p>Hello</p>`,
		},
		{
			name: "single quotes and upper case",
			in:   `<DIV STYLE='margin:0' Class='x'>Body</DIV>`,
			want: `<DIV>Body</DIV>`,
		},
		{
			name: "bare span unwrapped",
			in:   `<span style='font-size:12px'>Hi</span> there`,
			want: `Hi there`,
		},
		{
			name: "nested spans",
			in:   `<span><span class="a">A</span> <span id="k">B</span></span>`,
			want: `A <span id="k">B</span>`,
		},
		{
			name: "other attributes kept",
			in:   `<a href="/boat" class="link">Boat</a>`,
			want: `<a href="/boat">Boat</a>`,
		},
		{
			name: "whitespace collapsed",
			in:   "<p>\n  Hello\n\n\tworld </p>",
			want: "<p> Hello world </p>",
		},
		{
			name: "angle bracket inside quoted value",
			in:   `<span style="a>b">Hi</span> <a title='1 > 0' class="x">T</a>`,
			want: `Hi <a title='1 > 0'>T</a>`,
		},
		{
			name: "self closing tag",
			in:   `line<br class="x" />next`,
			want: `line<br />next`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripInlineStylesAndClasses(tt.in)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if again := StripInlineStylesAndClasses(got); again != got {
				t.Errorf("expected stripping to be idempotent, got %q", again)
			}
		})
	}
}

func TestExcerpt(t *testing.T) {
	got := Excerpt("<h2>Title</h2><p>Body <b>bold</b> text</p><script>ignored()</script>", 10)
	if got != "Body bold text" {
		t.Errorf("unexpected excerpt: %q", got)
	}

	got = Excerpt("<p>one two three four</p>", 2)
	if got != "one two..." {
		t.Errorf("expected truncated excerpt, got %q", got)
	}

	if got := Excerpt("   ", 5); got != "" {
		t.Errorf("expected empty excerpt, got %q", got)
	}
}
