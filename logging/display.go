package logging

import (
	"bufio"
	"duck/common"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

// PrintErrorMessage prints a standard Go error to the console
func PrintErrorMessage(tag string, err error) {
	ErrorStyleBG.Print(tag)
	ErrorColorFG.Println(" " + err.Error())
}

// PrintWarningMessage prints a warning message to the console
func PrintWarningMessage(tag, msg string) {
	WarnStyleBG.Print(tag)
	WarnColorFG.Println(" " + msg)
}

// PrintInfoMessage prints an informational message to the user
func PrintInfoMessage(tag, msg string) {
	InfoStyleBG.Print(tag)
	InfoColorFG.Println(" " + msg)
}

// -----------------------------------------------------------------------------
// This section contains all the display functions for the different kinds of
// errors that can be logged -- these functions are called to print the error to
// the screen.

func (ce *ConfigError) display() {
	PrintErrorMessage(ce.Kind+" Error", errors.New(ce.Message))
}

func (cw *ConfigWarning) display() {
	PrintWarningMessage(cw.Kind+" Warning", cw.Message)
}

func (rm *RuntimeMessage) display() {
	fmt.Print("\n\n")
	PrintErrorMessage("Runtime Error", errors.New(rm.Message))
}

var compileMsgStrings = map[int]string{
	LMKGrammar:  "Grammar",
	LMKToken:    "Token",
	LMKSyntax:   "Syntax",
	LMKName:     "Name",
	LMKDef:      "Definition",
	LMKTyping:   "Type",
	LMKUsage:    "Usage",
	LMKInternal: "Internal",
	LMKRuntime:  "Runtime",
}

func (cm *CompileMessage) display() {
	cm.displayBanner()
	fmt.Println(cm.Err.Message)

	if cm.Err.Line > 0 && cm.FilePath != "" {
		cm.displayCodeSelection()
	}
}

// displayBanner displays the banner on top of all compilation messages
func (cm *CompileMessage) displayBanner() {
	fmt.Print("\n\n-- ")
	kindStr := compileMsgStrings[cm.Err.Kind]
	kindLen := len(kindStr)
	if cm.isError() {
		ErrorStyleBG.Print(kindStr + " Error")
		kindLen += 7
	} else {
		WarnStyleBG.Print(kindStr + " Warning")
		kindLen += 9
	}

	fmt.Print(" ")

	fileName := filepath.Base(cm.FilePath)
	if cm.FilePath == "" {
		fileName = "<source>"
	}

	bannerLen := pterm.GetTerminalWidth() / 2
	if bannerLen > 50 {
		bannerLen = 50
	}

	dashCount := bannerLen - len(fileName) - kindLen - 1
	if dashCount < 2 {
		dashCount = 2
	}

	fmt.Print(strings.Repeat("-", dashCount) + " ")
	InfoColorFG.Println(fileName)
}

// displayCodeSelection displays the offending source line with its line number
func (cm *CompileMessage) displayCodeSelection() {
	f, err := os.Open(cm.FilePath)
	if err != nil {
		// the source may have come from somewhere other than disk
		return
	}
	defer f.Close()

	var line string
	sc := bufio.NewScanner(f)
	for lineNumber := 1; sc.Scan(); lineNumber++ {
		if lineNumber == cm.Err.Line {
			line = sc.Text()
			break
		}
	}

	line = strings.TrimSpace(strings.ReplaceAll(line, "\t", "    "))
	if line == "" {
		return
	}

	lineNumberWidth := len(strconv.Itoa(cm.Err.Line)) + 1
	lineNumberFmtStr := "%-" + strconv.Itoa(lineNumberWidth) + "v"

	fmt.Println()
	InfoColorFG.Print(fmt.Sprintf(lineNumberFmtStr, cm.Err.Line))
	fmt.Print("|  ")
	fmt.Println(line)

	fmt.Print(strings.Repeat(" ", lineNumberWidth), "|  ")
	ErrorColorFG.Println(strings.Repeat("^", len(line)))
	fmt.Println()
}

const fatalErrorPostlude = `
This is likely a bug in the compiler.
Please open an issue describing the program that triggered it.`

func displayFatalError(msg string) {
	fmt.Print("\n\n")
	ErrorStyleBG.Print("Fatal Error ")
	ErrorColorFG.Println(msg)
	InfoColorFG.Println(fatalErrorPostlude)
}

// -----------------------------------------------------------------------------

// displayCompileHeader displays all the compiler information before starting compilation
func displayCompileHeader(target string, cached bool) {
	fmt.Print("duck ")
	InfoColorFG.Print("v" + common.DuckVersion)
	fmt.Print(" -- target: ")
	InfoColorFG.Println(target)

	if cached {
		fmt.Println("using cached parsing table")
	}
}

// phaseSpinner stores the current phase spinner
var phaseSpinner *pterm.SpinnerPrinter
var currentPhase string
var phaseStartTime time.Time

const maxPhaseLength = len("Generating")

func padPhase(phase string) string {
	if len(phase) >= maxPhaseLength {
		return phase + "  "
	}

	return phase + strings.Repeat(" ", maxPhaseLength-len(phase)+2)
}

// displayBeginPhase displays the beginning of a compilation phase
func displayBeginPhase(phase string) {
	currentPhase = phase
	phaseSpinner = pterm.DefaultSpinner.WithStyle(pterm.NewStyle(InfoColorFG))

	phaseSpinner.SuccessPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: SuccessStyleBG,
			Text:  "Done",
		},
	}

	phaseSpinner.FailPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: ErrorStyleBG,
			Text:  "Fail",
		},
	}

	phaseSpinner.Start(padPhase(phase + "..."))
	phaseStartTime = time.Now()
}

// displayEndPhase displays the end of a compilation phase
func displayEndPhase(success bool) {
	if phaseSpinner != nil {
		if success {
			phaseSpinner.Success(
				padPhase(currentPhase),
				fmt.Sprintf("(%.3fs)", time.Since(phaseStartTime).Seconds()),
			)
		} else {
			phaseSpinner.Fail(padPhase(currentPhase))
		}

		phaseSpinner = nil
	}
}

// displayQuadTable renders a quadruple listing as a pterm table
func displayQuadTable(title string, rows [][]string) {
	fmt.Println()
	InfoColorFG.Println(title)

	data := pterm.TableData{{"#", "op", "left", "right", "result"}}
	for i, row := range rows {
		data = append(data, append([]string{strconv.Itoa(i)}, row...))
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		PrintErrorMessage("Display Error", err)
		return
	}

	fmt.Println(out)
}

// displayCompilationFinished displays a compilation finished message
func displayCompilationFinished(success bool, errorCount, warningCount int) {
	fmt.Print("\n")

	if success {
		SuccessColorFG.Print("All done! ")
	} else {
		ErrorColorFG.Print("Oh no! ")
	}

	fmt.Print("(")

	switch errorCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Print(" errors, ")
	case 1:
		ErrorColorFG.Print(1)
		fmt.Print(" error, ")
	default:
		ErrorColorFG.Print(errorCount)
		fmt.Print(" errors, ")
	}

	switch warningCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Println(" warnings)")
	case 1:
		WarnColorFG.Print(1)
		fmt.Println(" warning)")
	default:
		WarnColorFG.Print(warningCount)
		fmt.Println(" warnings)")
	}
}
