package main

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
)

// confirm asks a yes/no question. Interrupts and non-terminal input count as no.
func confirm(label string) bool {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := prompt.Run()
	return err == nil
}

// readMultiline reads lines until two consecutive empty lines or EOF. Single
// blank lines inside the text are kept.
func readMultiline(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var lines []string
	blank := 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			blank++
			if blank == 2 {
				break
			}
			lines = append(lines, "")
			continue
		}
		blank = 0
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
