package language

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "es", want: "es"},
		{in: " EN ", want: "en"},
		{in: "es-MX", want: "es-MX"},
		{in: "", wantErr: true},
		{in: "not a tag!", wantErr: true},
	}
	for _, tc := range cases {
		got, err := Normalize(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("Normalize(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("Normalize(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("es"); got != "Spanish" {
		t.Errorf("DisplayName(es) = %q", got)
	}
	if got := DisplayName("en-GB"); got != "English" {
		t.Errorf("DisplayName(en-GB) = %q", got)
	}
}

func TestBase(t *testing.T) {
	if got := Base("es-MX"); got != "es" {
		t.Errorf("Base(es-MX) = %q", got)
	}
}
