package runtime

import (
	"bufio"
	"io/fs"
	"path"
	"strings"

	"chat-relay/errors"
)

// CensoredData is the merged content of every embedded wordlist.
type CensoredData struct {
	Words     []string
	Languages []string
}

// CensoredLoader reads censored wordlists from an embedded filesystem.
// One file per language, one word per line, '#' starts a comment.
type CensoredLoader struct {
	fsys fs.FS
}

func NewCensoredLoader(fsys fs.FS) *CensoredLoader {
	return &CensoredLoader{fsys: fsys}
}

// LoadAll reads every file under dir, deduplicates words across languages,
// and returns the merged list. Fails when no word at all was found.
func (l *CensoredLoader) LoadAll(dir string) (CensoredData, error) {
	entries, err := fs.ReadDir(l.fsys, dir)
	if err != nil {
		return CensoredData{}, err
	}

	seen := make(map[string]struct{})
	var data CensoredData
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		lang := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
		data.Languages = append(data.Languages, lang)

		if err := l.appendWords(path.Join(dir, entry.Name()), seen, &data.Words); err != nil {
			return CensoredData{}, err
		}
	}

	if len(data.Words) == 0 {
		return CensoredData{}, errors.ErrEmptyWords
	}
	return data, nil
}

func (l *CensoredLoader) appendWords(name string, seen map[string]struct{}, words *[]string) error {
	f, err := l.fsys.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		word = strings.ToLower(word)
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		*words = append(*words, word)
	}
	return scanner.Err()
}
