package models

import "testing"

func TestParseEnums(t *testing.T) {
	for i := 0; i < ChartCount; i++ {
		d := Difficulty(i)
		got, err := ParseDifficulty(d.String())
		if err != nil || got != d {
			t.Errorf("ParseDifficulty(%q) = %v, %v", d.String(), got, err)
		}
	}
	for g := GradeNP; g <= GradeAAA; g++ {
		got, err := ParseGrade(g.String())
		if err != nil || got != g {
			t.Errorf("ParseGrade(%q) = %v, %v", g.String(), got, err)
		}
	}
	for l := LampNP; l <= LampPerfectFullCombo; l++ {
		got, err := ParseLamp(l.String())
		if err != nil || got != l {
			t.Errorf("ParseLamp(%q) = %v, %v", l.String(), got, err)
		}
	}

	if _, err := ParseDifficulty("SPX"); err == nil {
		t.Error("Expected error for unknown difficulty")
	}
	if _, err := ParseLamp("CLEAR"); err == nil {
		t.Error("Expected error for unknown lamp")
	}
}

func TestJudge(t *testing.T) {
	j := Judge{
		PGreat: [2]int{500, 0},
		Great:  [2]int{120, 0},
		Bad:    [2]int{3, 0},
		Poor:   [2]int{7, 0},
	}
	if got := j.ExScore(); got != 1120 {
		t.Errorf("ExScore() = %d; want 1120", got)
	}
	if got := j.MissCount(); got != 10 {
		t.Errorf("MissCount() = %d; want 10", got)
	}
}

func TestFormatSongID(t *testing.T) {
	tests := []struct {
		input int32
		want  string
	}{
		{1000, "01000"},
		{80003, "80003"},
		{0, "00000"},
		{-1, "67295"},
		{123456, "23456"},
	}
	for _, tt := range tests {
		if got := FormatSongID(tt.input); got != tt.want {
			t.Errorf("FormatSongID(%d) = %s; want %s", tt.input, got, tt.want)
		}
	}
}

func TestUnlockType_String(t *testing.T) {
	tests := []struct {
		u    UnlockType
		want string
	}{
		{UnlockUnknown, "Unknown"},
		{UnlockBase, "Base"},
		{UnlockBits, "Bits"},
		{UnlockSub, "Sub"},
		{UnlockType(9), "UnlockType(9)"},
	}
	for _, tt := range tests {
		if got := tt.u.String(); got != tt.want {
			t.Errorf("UnlockType(%d).String() = %q; want %q", int(tt.u), got, tt.want)
		}
	}
}
