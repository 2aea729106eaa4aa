package extract

import "testing"

func TestIsolate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "prose before the object",
			in:   `Let me check the files first. {"status": "success", "answer": 42}`,
			want: `{"status": "success", "answer": 42}`,
		},
		{
			name: "prose after the object too",
			in:   `Thinking... {"status": "error", "reason": "missing file"} Sorry about that.`,
			want: `{"status": "error", "reason": "missing file"}`,
		},
		{
			name: "last of several objects wins",
			in: `First attempt: {"status": "error", "reason": "retrying"}` +
				` and the final answer: {"status": "success", "answer": "done"}`,
			want: `{"status": "success", "answer": "done"}`,
		},
		{
			name: "nested objects survive depth counting",
			in:   `note {"status": "success", "data": {"files": {"a": 1}}} end`,
			want: `{"status": "success", "data": {"files": {"a": 1}}}`,
		},
		{
			name: "clarification status is recognized",
			in:   `{"status": "clarification", "question": "which branch?"}`,
			want: `{"status": "clarification", "question": "which branch?"}`,
		},
		{
			name: "no marker returns input unchanged",
			in:   `just prose, no structured answer here`,
			want: `just prose, no structured answer here`,
		},
		{
			name: "unknown status is not a marker",
			in:   `{"status": "pending", "answer": 1}`,
			want: `{"status": "pending", "answer": 1}`,
		},
		{
			name: "unterminated object returns input unchanged",
			in:   `cut off: {"status": "success", "answer"`,
			want: `cut off: {"status": "success", "answer"`,
		},
		{
			name: "invalid last candidate falls back to earlier one",
			in: `{"status": "success", "answer": "good"} then {"status": "error", "oops": }`,
			want: `{"status": "success", "answer": "good"}`,
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Isolate(tc.in)
			if got != tc.want {
				t.Errorf("Isolate(%q)\n  got  %q\n  want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestIsolateIsIdempotent(t *testing.T) {
	inputs := []string{
		`prose {"status": "success", "answer": 42} trailing`,
		`no marker at all`,
		`a {"status": "error", "r": 1} b {"status": "success", "r": 2}`,
	}
	for _, in := range inputs {
		once := Isolate(in)
		twice := Isolate(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestStatus(t *testing.T) {
	if got := Status(`{"status": "success", "answer": 1}`); got != "success" {
		t.Fatalf("Status = %q", got)
	}
	if got := Status(`plain text`); got != "" {
		t.Fatalf("Status on prose = %q", got)
	}
}
