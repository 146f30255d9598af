package chat

import (
	"reflect"
	"testing"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		text    string
		command string
		args    []string
		ok      bool
	}{
		{"!help", "help", []string{}, true},
		{"!HELP", "help", []string{}, true},
		{"  !time  ", "time", []string{}, true},
		{"!toptoday now please", "toptoday", []string{"now", "please"}, true},
		{"1337", "", nil, false},
		{"hello !help", "", nil, false},
		{"!", "", nil, false},
		{"! ", "", nil, false},
		{"", "", nil, false},
	}
	for _, tc := range cases {
		command, args, ok := ParseCommand(tc.text)
		if ok != tc.ok {
			t.Errorf("ParseCommand(%q) ok = %v, want %v", tc.text, ok, tc.ok)
			continue
		}
		if !ok {
			continue
		}
		if command != tc.command {
			t.Errorf("ParseCommand(%q) command = %q, want %q", tc.text, command, tc.command)
		}
		if len(args) != len(tc.args) || (len(args) > 0 && !reflect.DeepEqual(args, tc.args)) {
			t.Errorf("ParseCommand(%q) args = %v, want %v", tc.text, args, tc.args)
		}
	}
}
