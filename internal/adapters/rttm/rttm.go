// Package rttm reads speaker turns from RTTM files.
//
// Only SPEAKER records are used. Fields are whitespace separated:
//
//	SPEAKER <file> <chan> <onset> <dur> <ortho> <stype> <name> <conf> <slat>
//
// Blank lines and lines starting with ";;" are ignored.
package rttm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/okian/dscore/internal/domain/model"
)

const (
	speakerType = "SPEAKER"
	minFields   = 8
)

// ReadFile reads the turns of every recording in the RTTM file at path.
func ReadFile(path string) (model.Recordings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rttm: %w", err)
	}
	defer f.Close()

	recs, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// Read parses RTTM records from r, grouping turns by recording id.
func Read(r io.Reader) (model.Recordings, error) {
	recs := model.Recordings{}
	sc := bufio.NewScanner(r)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, ";;") {
			continue
		}
		fields := strings.Fields(line)
		if fields[0] != speakerType {
			continue
		}
		recID, turn, err := parseSpeaker(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		recs.Add(recID, turn)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read rttm: %w", err)
	}
	return recs, nil
}

func parseSpeaker(fields []string) (string, model.Turn, error) {
	if len(fields) < minFields {
		return "", model.Turn{}, fmt.Errorf("%w: %d fields, want at least %d", model.ErrMalformedInput, len(fields), minFields)
	}
	onset, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return "", model.Turn{}, fmt.Errorf("%w: onset %q", model.ErrMalformedInput, fields[3])
	}
	dur, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return "", model.Turn{}, fmt.Errorf("%w: duration %q", model.ErrMalformedInput, fields[4])
	}
	turn, err := model.NewTurn(fields[7], onset, onset+dur)
	if err != nil {
		return "", model.Turn{}, err
	}
	return fields[1], turn, nil
}
