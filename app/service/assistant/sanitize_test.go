package assistant

import "testing"

func TestSanitizeAnswerStripsMarkers(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "thoughts prefix",
			input: "Thoughts: let me work this out\nEntropy measures disorder.",
			want:  "Entropy measures disorder.",
		},
		{
			name:  "reasoning prefix",
			input: "Reasoning: because of X\nThe answer is 42.",
			want:  "The answer is 42.",
		},
		{
			name:  "analysis fence",
			input: "```analysis\nhidden notes\n```\nPhotosynthesis converts light to energy.",
			want:  "Photosynthesis converts light to energy.",
		},
		{
			name:  "chain of thought fence",
			input: "```chain-of-thought\nstep 1\nstep 2\n```\nFinal answer here.",
			want:  "Final answer here.",
		},
		{
			name:  "clean text untouched",
			input: "Plain answer with no leaks.",
			want:  "Plain answer with no leaks.",
		},
		{
			name:  "mid-text colon kept",
			input: "Key fact: water boils at 100C.",
			want:  "Key fact: water boils at 100C.",
		},
	}

	for _, tc := range cases {
		if got := sanitizeAnswer(tc.input); got != tc.want {
			t.Errorf("%s: sanitizeAnswer(%q) = %q, want %q", tc.name, tc.input, got, tc.want)
		}
	}
}
