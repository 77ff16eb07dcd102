// pkg/iprange/iprange_test.go
// Unit tests for target address expansion

package iprange

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    string
		wantErr bool
	}{
		{"cidr", "192.168.1.0/24", "192.168.1.0/24", false},
		{"cidr host bits cleared", "192.168.1.77/24", "192.168.1.0/24", false},
		{"single ip", "10.0.0.1", "10.0.0.1/32", false},
		{"ipv6", "::1", "::1/128", false},
		{"empty", "", "", true},
		{"garbage", "not-an-ip", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got.String() != tt.want {
				t.Errorf("Parse() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name  string
		specs []string
		want  []string
	}{
		{
			name:  "/30 yields two hosts",
			specs: []string{"192.168.1.0/30"},
			want:  []string{"192.168.1.1", "192.168.1.2"},
		},
		{
			name:  "/31 yields both addresses",
			specs: []string{"192.168.1.0/31"},
			want:  []string{"192.168.1.0", "192.168.1.1"},
		},
		{
			name:  "single ip",
			specs: []string{"127.0.0.1"},
			want:  []string{"127.0.0.1"},
		},
		{
			name:  "loopback /32 cidr",
			specs: []string{"127.0.0.1/32"},
			want:  []string{"127.0.0.1"},
		},
		{
			name:  "two ranges",
			specs: []string{"10.0.0.0/31", "10.0.1.0/31"},
			want:  []string{"10.0.0.0", "10.0.0.1", "10.0.1.0", "10.0.1.1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(tt.specs)
			if err != nil {
				t.Fatalf("Expand() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expand() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpand_Invalid(t *testing.T) {
	cases := [][]string{
		nil,
		{},
		{""},
		{"bogus"},
		{"192.168.1.0/24", "bogus"},
	}
	for _, specs := range cases {
		if _, err := Expand(specs); err == nil {
			t.Errorf("Expand(%v) expected error", specs)
		}
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		specs []string
		want  uint64
	}{
		{[]string{"192.168.1.0/24"}, 254},
		{[]string{"192.168.1.0/30"}, 2},
		{[]string{"192.168.1.0/31"}, 2},
		{[]string{"10.0.0.1"}, 1},
		{[]string{"10.0.0.0/31", "10.0.1.0/30"}, 4},
	}

	for _, tt := range tests {
		got, err := Count(tt.specs)
		if err != nil {
			t.Fatalf("Count(%v) error = %v", tt.specs, err)
		}
		if got != tt.want {
			t.Errorf("Count(%v) = %d, want %d", tt.specs, got, tt.want)
		}
	}
}

func TestCountMatchesExpand(t *testing.T) {
	specs := []string{"172.16.0.0/28", "172.16.1.0/30", "172.16.2.1"}
	addrs, err := Expand(specs)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	n, err := Count(specs)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if uint64(len(addrs)) != n {
		t.Errorf("Count() = %d, Expand() yielded %d", n, len(addrs))
	}
}
