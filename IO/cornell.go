package IO

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/rhn19/NN-Chatbot/params"
)

// Raw dialogue corpus extraction (Cornell movie-dialogs layout). The line and
// conversation files use " +++$+++ " as field separator and Latin-1 bytes.

const fieldSep = " +++$+++ "

// Line is one utterance from the raw corpus.
type Line struct {
	ID          string
	CharacterID string
	MovieID     string
	Character   string
	Text        string
}

var utteranceIDRE = regexp.MustCompile(`L[0-9]+`)

func openLatin1(path string) (*os.File, *bufio.Scanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	sc := bufio.NewScanner(charmap.ISO8859_1.NewDecoder().Reader(f))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return f, sc, nil
}

// LoadLines parses movie_lines.txt into a lineID -> Line map.
func LoadLines(path string) (map[string]Line, error) {
	f, sc, err := openLatin1(path)
	if err != nil {
		return nil, fmt.Errorf("IO: load lines: %w", err)
	}
	defer f.Close()

	lines := map[string]Line{}
	for sc.Scan() {
		values := strings.Split(sc.Text(), fieldSep)
		if len(values) < 5 {
			continue // a handful of raw lines are truncated
		}
		l := Line{
			ID:          values[0],
			CharacterID: values[1],
			MovieID:     values[2],
			Character:   values[3],
			Text:        values[4],
		}
		lines[l.ID] = l
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("IO: load lines: %w", err)
	}
	return lines, nil
}

// LoadConversations parses movie_conversations.txt and resolves each
// conversation's utterance ids against the loaded lines.
func LoadConversations(path string, lines map[string]Line) ([][]Line, error) {
	f, sc, err := openLatin1(path)
	if err != nil {
		return nil, fmt.Errorf("IO: load conversations: %w", err)
	}
	defer f.Close()

	var convos [][]Line
	for sc.Scan() {
		values := strings.Split(sc.Text(), fieldSep)
		if len(values) < 4 {
			continue
		}
		ids := utteranceIDRE.FindAllString(values[3], -1)
		convo := make([]Line, 0, len(ids))
		for _, id := range ids {
			if l, ok := lines[id]; ok {
				convo = append(convo, l)
			}
		}
		convos = append(convos, convo)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("IO: load conversations: %w", err)
	}
	return convos, nil
}

// ExtractSentencePairs turns each conversation into consecutive
// (utterance, reply) pairs, skipping pairs with an empty side.
func ExtractSentencePairs(convos [][]Line) []params.Pair {
	var pairs []params.Pair
	for _, convo := range convos {
		for i := 0; i+1 < len(convo); i++ {
			input := strings.TrimSpace(convo[i].Text)
			target := strings.TrimSpace(convo[i+1].Text)
			if input != "" && target != "" {
				pairs = append(pairs, params.Pair{Input: input, Target: target})
			}
		}
	}
	return pairs
}

// SavePairs extracts sentence pairs from a raw corpus directory and writes
// them to outFile as tab-separated lines.
func SavePairs(corpusDir, outFile string) error {
	slog.Info("loading corpus", "dir", corpusDir)
	lines, err := LoadLines(filepath.Join(corpusDir, "movie_lines.txt"))
	if err != nil {
		return err
	}
	slog.Info("loading conversations", "lines", len(lines))
	convos, err := LoadConversations(filepath.Join(corpusDir, "movie_conversations.txt"), lines)
	if err != nil {
		return err
	}
	slog.Info("extracting sentence pairs", "conversations", len(convos))
	pairs := ExtractSentencePairs(convos)
	slog.Info("writing pairs to file", "pairs", len(pairs), "file", outFile)
	return WritePairs(pairs, outFile)
}
