// Package console is the interactive text menu of the lottery
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	lottery "github.com/kydenul/lotto"
)

const (
	menuHeader = "Lotto! Please select an option by typing the number or the name:"
	namePrompt = "Please enter the first name of the participant."
	farewell   = "Thank you for using the Lotto, have a good day!"

	msgDrawNotAvailable = "Error: There are no more draws to be sold. Please wait for the next round!"
	msgInvalidName      = "Error: Please enter a first name."
	msgInvalidOption    = "Invalid option!"
	msgNoHistory        = "Draw history is not available."
	msgEmptyHistory     = "No draws recorded yet."

	// DefaultHistoryLimit is the number of draws the history option lists
	DefaultHistoryLimit = 5
)

var divider = strings.Repeat("-", 93)

// Lottery is what the console drives; *lottery.Service satisfies it
type Lottery interface {
	PurchaseTicket(name string) (int, error)
	Draw(ctx context.Context) (*lottery.DrawResult, error)
	LatestWinners() []lottery.WinnerRecord
	RecentDraws(ctx context.Context, limit int) ([]*lottery.DrawResult, error)
}

type option struct {
	key  string
	name string
	run  func(c *Console, ctx context.Context) bool // returns true to quit
}

var options = []option{
	{key: "1", name: "purchase", run: (*Console).purchase},
	{key: "2", name: "draw", run: (*Console).draw},
	{key: "3", name: "winners", run: (*Console).winners},
	{key: "4", name: "quit", run: func(*Console, context.Context) bool { return true }},
	{key: "5", name: "history", run: (*Console).history},
}

// Console reads whitespace separated commands from in and writes to out
type Console struct {
	lottery      Lottery
	scanner      *bufio.Scanner
	out          io.Writer
	logger       lottery.Logger
	historyLimit int

	tokens  <-chan string
	ended   bool
	scanErr error
}

// Option customizes a Console
type Option func(*Console)

// WithLogger logs unexpected errors
func WithLogger(logger lottery.Logger) Option {
	return func(c *Console) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHistoryLimit sets how many journaled draws the history option lists
func WithHistoryLimit(limit int) Option {
	return func(c *Console) {
		if limit > 0 {
			c.historyLimit = limit
		}
	}
}

// New creates a console for l
func New(l Lottery, in io.Reader, out io.Writer, opts ...Option) *Console {
	scanner := bufio.NewScanner(in)
	scanner.Split(bufio.ScanWords)

	c := &Console{
		lottery:      l,
		scanner:      scanner,
		out:          out,
		logger:       lottery.NewSilentLogger(),
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run shows the menu until the user quits, the input ends or ctx is done.
// A cancelled ctx interrupts a pending read and no further command runs.
func (c *Console) Run(ctx context.Context) error {
	defer c.println(farewell)

	if ctx.Err() != nil {
		return nil
	}
	stop := c.startReading()
	defer stop()

	for ctx.Err() == nil {
		c.printMenu()

		token, ok := c.next(ctx)
		if ctx.Err() != nil {
			c.println("")
			break
		}

		quit := !ok
		if ok {
			if opt, found := match(token); found {
				quit = opt.run(c, ctx)
			} else {
				c.print("\n" + msgInvalidOption)
			}
		}

		c.println("")
		c.println(divider)
		if quit {
			break
		}
	}

	if c.ended {
		return c.scanErr
	}
	return nil
}

// startReading scans tokens in the background so reads can be abandoned
func (c *Console) startReading() (stop func()) {
	tokens := make(chan string)
	done := make(chan struct{})
	c.tokens = tokens

	go func() {
		defer close(tokens)
		for c.scanner.Scan() {
			select {
			case tokens <- c.scanner.Text():
			case <-done:
				return
			}
		}
		c.scanErr = c.scanner.Err()
	}()

	return func() { close(done) }
}

// match finds the first option whose number equals token or whose name token contains
func match(token string) (option, bool) {
	for _, opt := range options {
		if token == opt.key || strings.Contains(token, opt.name) {
			return opt, true
		}
	}
	return option{}, false
}

func (c *Console) printMenu() {
	var b strings.Builder
	b.WriteString(menuHeader)
	b.WriteByte('\n')
	for _, opt := range options {
		fmt.Fprintf(&b, " %s. %s\n", opt.key, opt.name)
	}
	c.print(b.String())
}

func (c *Console) purchase(ctx context.Context) bool {
	c.print("\n" + namePrompt + "\n")

	name, ok := c.next(ctx)
	if ctx.Err() != nil {
		return true
	}
	number, err := c.lottery.PurchaseTicket(name)
	switch {
	case err == nil:
		c.print(fmt.Sprintf("\nLotto Number for %s : %d", name, number))
	case errors.Is(err, lottery.ErrDrawNotAvailable):
		c.print("\n" + msgDrawNotAvailable)
	case errors.Is(err, lottery.ErrInvalidName):
		c.print("\n" + msgInvalidName)
	default:
		c.logger.Error("Purchase for %q failed: %v", name, err)
		c.print("\nError: " + err.Error())
	}
	return !ok
}

func (c *Console) draw(ctx context.Context) bool {
	result, err := c.lottery.Draw(ctx)
	if err != nil {
		c.logger.Error("Draw failed: %v", err)
		c.print("\nError: " + err.Error())
		return false
	}

	var b strings.Builder
	b.WriteByte('\n')
	for _, number := range result.Numbers {
		b.WriteString(strconv.Itoa(number))
		b.WriteByte(' ')
	}
	c.print(b.String())
	return false
}

func (c *Console) winners(context.Context) bool {
	winners := c.lottery.LatestWinners()

	names := make([]string, len(winners))
	amounts := make([]string, len(winners))
	for i, w := range winners {
		names[i] = w.Name
		amounts[i] = strconv.Itoa(w.Winnings)
	}

	c.print("\n" + strings.Join(names, "\t") + "\n" + strings.Join(amounts, "\t"))
	return false
}

func (c *Console) history(ctx context.Context) bool {
	draws, err := c.lottery.RecentDraws(ctx, c.historyLimit)
	switch {
	case errors.Is(err, lottery.ErrJournalUnavailable):
		c.print("\n" + msgNoHistory)
		return false
	case err != nil:
		c.logger.Error("Reading draw history failed: %v", err)
		c.print("\nError: " + err.Error())
		return false
	case len(draws) == 0:
		c.print("\n" + msgEmptyHistory)
		return false
	}

	var b strings.Builder
	for _, d := range draws {
		names := make([]string, len(d.Winners))
		for i, w := range d.Winners {
			names[i] = w.Name
		}
		fmt.Fprintf(&b, "\nRound %d %s: %s | %s | paid %d, pot %d",
			d.Round, d.DrawnAt.Format("2006-01-02 15:04:05"),
			joinInts(d.Numbers), strings.Join(names, ", "), d.TotalPayout, d.PotAfter)
	}
	c.print(b.String())
	return false
}

// next returns the next input token, false at end of input or when ctx is done
func (c *Console) next(ctx context.Context) (string, bool) {
	select {
	case token, ok := <-c.tokens:
		if !ok {
			c.ended = true
		}
		return token, ok
	case <-ctx.Done():
		return "", false
	}
}

func (c *Console) print(s string) { fmt.Fprint(c.out, s) }

func (c *Console) println(s string) { fmt.Fprintln(c.out, s) }

func joinInts(numbers []int) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, " ")
}
