package organizer_test

import (
	"testing"

	"camorg/internal/organizer"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name string
		file string
		want organizer.TimestampMatch
	}{
		{
			name: "plain",
			file: "2015-04-13 09.12.33.jpg",
			want: organizer.TimestampMatch{Year: 2015, Month: 4, Day: 13, Hour: 9, Minute: 12, Second: 33, Extension: "jpg"},
		},
		{
			name: "HDR",
			file: "2015-04-13 09.12.33 HDR.jpg",
			want: organizer.TimestampMatch{Year: 2015, Month: 4, Day: 13, Hour: 9, Minute: 12, Second: 33, HDR: true, Extension: "jpg"},
		},
		{
			name: "burst",
			file: "2015-04-13 09.12.33-2.jpg",
			want: organizer.TimestampMatch{Year: 2015, Month: 4, Day: 13, Hour: 9, Minute: 12, Second: 33, HasBurst: true, Burst: 2, Extension: "jpg"},
		},
		{
			name: "HDR burst",
			file: "2015-04-13 09.12.33 HDR-3.jpg",
			want: organizer.TimestampMatch{Year: 2015, Month: 4, Day: 13, Hour: 9, Minute: 12, Second: 33, HDR: true, HasBurst: true, Burst: 3, Extension: "jpg"},
		},
		{
			name: "burst without digits",
			file: "2015-04-13 09.12.33-.jpg",
			want: organizer.TimestampMatch{Year: 2015, Month: 4, Day: 13, Hour: 9, Minute: 12, Second: 33, HasBurst: true, Extension: "jpg"},
		},
		{
			name: "conflicted copy",
			file: "2015-04-13 09.12.33 (Ann's conflicted copy 2015-04-13).jpg",
			want: organizer.TimestampMatch{
				Year: 2015, Month: 4, Day: 13, Hour: 9, Minute: 12, Second: 33,
				ConflictedCopy: true, ConflictUser: "Ann", Extension: "jpg",
			},
		},
		{
			name: "conflicted copy with possessive device name",
			file: "2015-04-13 09.12.33 (Ann's iPhone's conflicted copy 2015-04-13).jpg",
			want: organizer.TimestampMatch{
				Year: 2015, Month: 4, Day: 13, Hour: 9, Minute: 12, Second: 33,
				ConflictedCopy: true, ConflictUser: "Ann's iPhone", Extension: "jpg",
			},
		},
		{
			name: "conflicted copy followed by burst",
			file: "2015-04-13 09.12.33 (Ann's conflicted copy 2015-04-13)-1.jpg",
			want: organizer.TimestampMatch{
				Year: 2015, Month: 4, Day: 13, Hour: 9, Minute: 12, Second: 33,
				HasBurst: true, Burst: 1, ConflictedCopy: true, ConflictUser: "Ann", Extension: "jpg",
			},
		},
		{
			name: "device burst wins over trailing burst",
			file: "2015-04-13 09.12.33 HDR-4 (Ann's conflicted copy 2015-04-13)-1.jpg",
			want: organizer.TimestampMatch{
				Year: 2015, Month: 4, Day: 13, Hour: 9, Minute: 12, Second: 33,
				HDR: true, HasBurst: true, Burst: 4, ConflictedCopy: true, ConflictUser: "Ann", Extension: "jpg",
			},
		},
		{
			name: "multi-dot extension",
			file: "2015-04-13 09.12.33.mov.xmp",
			want: organizer.TimestampMatch{Year: 2015, Month: 4, Day: 13, Hour: 9, Minute: 12, Second: 33, Extension: "mov.xmp"},
		},
		{
			name: "field ranges are not validated",
			file: "2015-13-45 99.99.99.png",
			want: organizer.TimestampMatch{Year: 2015, Month: 13, Day: 45, Hour: 99, Minute: 99, Second: 99, Extension: "png"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := organizer.Match(tt.file)
			if !ok {
				t.Fatalf("Match(%q) did not match", tt.file)
			}
			if *got != tt.want {
				t.Errorf("Match(%q) = %+v, want %+v", tt.file, *got, tt.want)
			}
		})
	}
}

func TestMatch_NoMatch(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{"unrelated name", "IMG_0001.jpg"},
		{"short month", "2015-4-13 09.12.33.jpg"},
		{"short hour", "2015-04-13 9.12.33.jpg"},
		{"two digit year", "15-04-13 09.12.33.jpg"},
		{"colon separated time", "2015-04-13 09:12:33.jpg"},
		{"underscore instead of space", "2015-04-13_09.12.33.jpg"},
		{"missing extension", "2015-04-13 09.12.33"},
		{"empty extension", "2015-04-13 09.12.33."},
		{"whitespace in extension", "2015-04-13 09.12.33.j pg"},
		{"prefix", "x2015-04-13 09.12.33.jpg"},
		{"text before extension", "2015-04-13 09.12.33 edited.jpg"},
		{"lowercase hdr", "2015-04-13 09.12.33 hdr.jpg"},
		{"letters in burst", "2015-04-13 09.12.33-a.jpg"},
		{"conflicted copy with different date", "2015-04-13 09.12.33 (Ann's conflicted copy 2015-04-14).jpg"},
		{"conflicted copy with different year", "2015-04-13 09.12.33 (Ann's conflicted copy 2016-04-13).jpg"},
		{"empty", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got, ok := organizer.Match(tt.file); ok {
				t.Errorf("Match(%q) = %+v, want no match", tt.file, *got)
			}
		})
	}
}

func TestMatch_Idempotent(t *testing.T) {
	const file = "2015-04-13 09.12.33 HDR-2.jpg"

	first, ok := organizer.Match(file)
	if !ok {
		t.Fatalf("Match(%q) did not match", file)
	}
	second, ok := organizer.Match(file)
	if !ok {
		t.Fatalf("second Match(%q) did not match", file)
	}
	if *first != *second {
		t.Errorf("Match is not stable: %+v != %+v", *first, *second)
	}
}
