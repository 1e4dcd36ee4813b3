package session

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shiroemons/go-infitracker/internal/infinitas/models"
)

var sessionColumns = []string{
	"date", "title", "difficulty", "level", "lamp", "grade", "ex score", "miss count",
	"pgreat", "great", "good", "bad", "poor", "combo break", "fast", "slow",
}

// sessionHeader はセッションファイルの見出し行
func sessionHeader() string {
	return strings.Join(sessionColumns, "\t") + "\n"
}

func sessionFields(at time.Time, r models.PlayResult) []string {
	j := r.Judge
	sum := func(v [2]int) string { return strconv.Itoa(v[0] + v[1]) }
	return []string{
		at.Format("2006-01-02 15:04:05"),
		r.Title,
		r.Chart.Difficulty.String(),
		strconv.Itoa(r.Level),
		r.Lamp.String(),
		r.Grade.String(),
		strconv.Itoa(r.ExScore),
		strconv.Itoa(r.MissCount),
		sum(j.PGreat),
		sum(j.Great),
		sum(j.Good),
		sum(j.Bad),
		sum(j.Poor),
		sum(j.ComboBreak),
		sum(j.Fast),
		sum(j.Slow),
	}
}

// sessionRow はプレー結果1件をセッションファイルの1行にします
func sessionRow(at time.Time, r models.PlayResult) string {
	return strings.Join(sessionFields(at, r), "\t") + "\n"
}

// printResult はプレー結果を見出しと値の組で表示します
func printResult(w io.Writer, at time.Time, r models.PlayResult) {
	fmt.Fprintln(w, "\n最新のプレー:")
	for i, v := range sessionFields(at, r) {
		fmt.Fprintf(w, "%12s: %s\n", sessionColumns[i], v)
	}
}
