package driver

import (
	"errors"
	"strings"
	"testing"

	"orderbook/internal/domain"
	"orderbook/internal/engine"
)

func TestRun_Scenario_GoodTillCancelMatch(t *testing.T) {
	e := engine.New(nil)
	input := strings.Join([]string{
		"A B GoodTillCancel 100 10 1",
		"A S GoodTillCancel 100 6 2",
		"R 1 1 0",
	}, "\n")

	if err := Run(e, strings.NewReader(input), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRun_Scenario_FillOrKillHit(t *testing.T) {
	e := engine.New(nil)
	input := strings.Join([]string{
		"A B GoodTillCancel 100 10 1",
		"A B GoodTillCancel 99 5 2",
		"A S FillOrKill 99 12 3",
		"R 1 1 0",
	}, "\n")

	if err := Run(e, strings.NewReader(input), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRun_Scenario_Cancel(t *testing.T) {
	e := engine.New(nil)
	input := strings.Join([]string{
		"A B GoodTillCancel 100 10 1",
		"C 1",
		"R 0 0 0",
	}, "\n")

	if err := Run(e, strings.NewReader(input), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRun_MismatchedResultIsError(t *testing.T) {
	e := engine.New(nil)
	input := strings.Join([]string{
		"A B GoodTillCancel 100 10 1",
		"R 0 0 0",
	}, "\n")

	err := Run(e, strings.NewReader(input), nil)
	if !errors.Is(err, domain.ErrResultCountMismatch) {
		t.Fatalf("err = %v, want ErrResultCountMismatch", err)
	}
}

func TestRun_MissingResultIsError(t *testing.T) {
	e := engine.New(nil)
	input := "A B GoodTillCancel 100 10 1\n"

	err := Run(e, strings.NewReader(input), nil)
	if !errors.Is(err, domain.ErrMissingResult) {
		t.Fatalf("err = %v, want ErrMissingResult", err)
	}
}

func TestRun_ResultNotAtEndIsError(t *testing.T) {
	e := engine.New(nil)
	input := strings.Join([]string{
		"A B GoodTillCancel 100 10 1",
		"R 1 1 0",
		"C 1",
	}, "\n")

	err := Run(e, strings.NewReader(input), nil)
	if !errors.Is(err, domain.ErrMisplacedResult) {
		t.Fatalf("err = %v, want ErrMisplacedResult", err)
	}
}

func TestRun_MalformedLineIsError(t *testing.T) {
	e := engine.New(nil)
	input := strings.Join([]string{
		"A B GoodTillCancel 100 10 1",
		"nonsense line",
		"R 1 1 0",
	}, "\n")

	err := Run(e, strings.NewReader(input), nil)
	if !errors.Is(err, domain.ErrMalformedLine) {
		t.Fatalf("err = %v, want ErrMalformedLine", err)
	}
}

func TestRun_BlankLinesAreSkipped(t *testing.T) {
	e := engine.New(nil)
	input := strings.Join([]string{
		"A B GoodTillCancel 100 10 1",
		"",
		"   ",
		"C 1",
		"",
		"R 0 0 0",
	}, "\n")

	if err := Run(e, strings.NewReader(input), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
