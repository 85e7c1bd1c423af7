package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"colisapp/internal/models"
)

var (
	errInputClosed = errors.New("input closed")
	errNoOptions   = errors.New("no option available")
)

// prompter reads answers line by line.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

func (p *prompter) ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s ", label)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// choose lists opts and returns the id of the picked one. It asks again until
// a valid 1-based number is entered.
func (p *prompter) choose(label string, opts []models.Option) (models.Option, error) {
	if len(opts) == 0 {
		return models.Option{}, errNoOptions
	}
	fmt.Fprint(p.out, renderOptions(opts))
	for {
		ans, err := p.ask(label)
		if err != nil {
			return models.Option{}, err
		}
		i, err := strconv.Atoi(ans)
		if err == nil && i >= 1 && i <= len(opts) {
			return opts[i-1], nil
		}
		fmt.Fprintln(p.out, dimStyle.Render(fmt.Sprintf("Entrez un nombre entre 1 et %d.", len(opts))))
	}
}

// number asks until the answer parses as a finite float. A comma is accepted
// as the decimal separator.
func (p *prompter) number(label string) (float64, error) {
	for {
		ans, err := p.ask(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(ans, ",", "."), 64)
		if err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v, nil
		}
		fmt.Fprintln(p.out, dimStyle.Render("Entrez un nombre."))
	}
}

// integer asks until the answer is a whole number.
func (p *prompter) integer(label string) (int, error) {
	for {
		ans, err := p.ask(label)
		if err != nil {
			return 0, err
		}
		if n, err := strconv.Atoi(ans); err == nil {
			return n, nil
		}
		fmt.Fprintln(p.out, dimStyle.Render("Entrez un nombre entier."))
	}
}

// yes reports whether the answer starts with o (oui) or y.
func yes(ans string) bool {
	ans = strings.ToLower(ans)
	return strings.HasPrefix(ans, "o") || strings.HasPrefix(ans, "y")
}
