package command

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Args
	}{
		{
			name: "mention with body",
			raw:  "<@U123|alice> write a chapter",
			want: Args{AddressedID: "U123", AddressedName: "alice", Body: "write a chapter", HasBody: true},
		},
		{
			name: "mention alone has no body",
			raw:  "<@U123|alice>",
			want: Args{AddressedID: "U123", AddressedName: "alice"},
		},
		{
			name: "mention with trailing spaces has no body",
			raw:  "<@U123|alice>   ",
			want: Args{AddressedID: "U123", AddressedName: "alice"},
		},
		{
			name: "plain body",
			raw:  "write a chapter",
			want: Args{Body: "write a chapter", HasBody: true},
		},
		{
			name: "empty",
			raw:  "",
			want: Args{},
		},
		{
			name: "whitespace only",
			raw:  "   ",
			want: Args{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			if got != tt.want {
				t.Errorf("expected: %+v\nactual:%+v", tt.want, got)
			}
		})
	}
}
