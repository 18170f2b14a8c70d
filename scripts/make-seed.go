//go:build ignore

// Converts a roster CSV into the JSON seed file consumed by
// `pipeline recreate --seed-file`.
//
// Input lines: rank,osuUserId,username,country[,avatarUrl]
//
//	go run scripts/make-seed.go roster.csv > seed.json
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type seedPlayer struct {
	OsuUserID int64  `json:"osuUserId"`
	Username  string `json:"username"`
	Country   string `json:"country"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Rank      int    `json:"rank"`
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: make-seed <roster.csv>")
		os.Exit(1)
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "open roster: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var players []seedPlayer
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) < 4 {
			fmt.Fprintf(os.Stderr, "line %d: need rank,osuUserId,username,country\n", lineNo)
			os.Exit(1)
		}

		rank, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			fmt.Fprintf(os.Stderr, "line %d: bad rank %q\n", lineNo, fields[0])
			os.Exit(1)
		}
		osuID, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "line %d: bad osu user id %q\n", lineNo, fields[1])
			os.Exit(1)
		}

		p := seedPlayer{
			Rank:      rank,
			OsuUserID: osuID,
			Username:  strings.TrimSpace(fields[2]),
			Country:   strings.TrimSpace(fields[3]),
		}
		if len(fields) > 4 {
			p.AvatarURL = strings.TrimSpace(fields[4])
		}
		players = append(players, p)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "read roster: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(players); err != nil {
		fmt.Fprintf(os.Stderr, "encode seed: %v\n", err)
		os.Exit(1)
	}
}
