package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dkarlovi/gifcreator/clip"
)

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask prints question and returns the trimmed answer. io.EOF is only
// returned when nothing at all was typed.
func (p *prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirmLargeGIF asks whether to go on with a GIF whose frame estimate is
// over the threshold. Choosing "e" lets the user change duration, fps and
// resize before continuing. It returns false when the user cancels or the
// input ends before an answer is given.
func confirmLargeGIF(p *prompter, params *clip.Params, info *clip.Info) (bool, error) {
	fmt.Fprintln(p.out, "<comment>Warning: This GIF may be very large.</>")
	choice, err := p.ask("Do you want to continue? (y = continue / n = cancel / e = edit parameters) ")
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	switch strings.ToLower(choice) {
	case "n":
		return false, nil
	case "e":
		err := editParams(p, params, info)
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
	}
	return true, nil
}

func editParams(p *prompter, params *clip.Params, info *clip.Info) error {
	duration, fps, resize := params.Duration, params.FPS, params.Resize

	answer, err := p.ask(fmt.Sprintf("Enter new duration in seconds (current %g): ", duration))
	if err != nil {
		return err
	}
	invalid := false
	if answer != "" {
		if duration, err = strconv.ParseFloat(answer, 64); err != nil {
			invalid = true
		}
	}

	if !invalid {
		if answer, err = p.ask(fmt.Sprintf("Enter new FPS (current %d): ", fps)); err != nil {
			return err
		}
		if answer != "" {
			if fps, err = strconv.Atoi(answer); err != nil {
				invalid = true
			}
		}
	}

	if !invalid {
		if answer, err = p.ask(fmt.Sprintf("Enter resize scale (current %g): ", resize)); err != nil {
			return err
		}
		if answer != "" {
			if resize, err = strconv.ParseFloat(answer, 64); err != nil {
				invalid = true
			}
		}
	}

	if invalid || params.Edit(info, duration, fps, resize) != nil {
		fmt.Fprintln(p.out, "<error>Invalid input. Using previous values.</>")
		return nil
	}

	fmt.Fprintf(p.out, "Updated estimated frames: <info>%g</>\n", params.EstimatedFrames())
	return nil
}
