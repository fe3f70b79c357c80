package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// --- Globals & Styles ---

var (
	// Level colors
	infoColor  = color.New()
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed)
	fatalColor = color.New(color.FgRed, color.Bold)

	// Component colors
	databaseColor = color.New()
	storeColor    = color.New(color.FgMagenta)
	meowColor     = color.New(color.FgMagenta)
	resetColor    = color.New(color.FgMagenta)
	tallyColor    = color.New(color.FgMagenta)

	// Global state
	DefaultTimeFormat = "15:04:05"
	IsSilent          = false
	LogToFile         = false
	Logger            *slog.Logger

	// Internal state
	logFile *os.File
	logMu   sync.Mutex
)

// --- Initialization ---

func init() {
	InitLogger(false, false)
}

// InitLogger initializes the global structured logger
func InitLogger(silent bool, saveToFile bool) {
	logMu.Lock()
	defer logMu.Unlock()

	IsSilent = silent
	LogToFile = saveToFile
	level := slog.LevelInfo
	if strings.ToLower(os.Getenv("DEBUG")) == "true" {
		level = slog.LevelDebug
	}

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	var writer io.Writer = os.Stdout
	var err error

	if LogToFile {
		exePath, exeErr := os.Executable()
		logName := GetProjectName() + ".log"
		if exeErr == nil {
			logName = filepath.Base(exePath) + ".log"
		}

		logFile, err = os.OpenFile(logName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open %s: %v\n", logName, err)
		} else {
			writer = io.MultiWriter(os.Stdout, NewStripANSIWriter(logFile))
		}
	}

	color.NoColor = false

	handler := NewBotLogHandler(writer, &BotLogHandlerOptions{
		Silent: IsSilent,
		Level:  level,
	})
	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

func SetSilentMode(silent bool) {
	InitLogger(silent, LogToFile)
}

// --- Public Logging API ---

func LogInfo(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...))
}

func LogWarn(format string, v ...any) {
	slog.Warn(fmt.Sprintf(format, v...))
}

func LogError(format string, v ...any) {
	slog.Error(fmt.Sprintf(format, v...))
}

func LogFatal(format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	slog.Log(context.Background(), slog.LevelError+4, msg)
	panic(msg)
}

func LogDebug(format string, v ...any) {
	slog.Debug(fmt.Sprintf(format, v...))
}

// Component Loggers

func LogDatabase(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "database"))
}

func LogStore(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "store"))
}

func LogMeow(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "meow"))
}

func LogReset(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "reset"))
}

func LogTally(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), slog.String("component", "tally"))
}

// --- Log Handler Implementation ---

type BotLogHandlerOptions struct {
	Silent bool
	Level  slog.Leveler
}

type BotLogHandler struct {
	w    io.Writer
	opts *BotLogHandlerOptions
	mu   *sync.Mutex
}

func NewBotLogHandler(w io.Writer, opts *BotLogHandlerOptions) *BotLogHandler {
	if opts == nil {
		opts = &BotLogHandlerOptions{Level: slog.LevelInfo}
	}
	return &BotLogHandler{
		w:    w,
		opts: opts,
		mu:   &sync.Mutex{},
	}
}

func (h *BotLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.opts.Silent {
		return false
	}
	return level >= h.opts.Level.Level()
}

func (h *BotLogHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.opts.Silent {
		return nil
	}

	timeStr := time.Now().Format(DefaultTimeFormat)
	var levelStr string
	var levelColor *color.Color

	switch {
	case r.Level >= slog.LevelError+4:
		levelStr = "FATAL"
		levelColor = fatalColor
	case r.Level >= slog.LevelError:
		levelStr = "ERROR"
		levelColor = errorColor
	case r.Level >= slog.LevelWarn:
		levelStr = "WARN"
		levelColor = warnColor
	case r.Level >= slog.LevelInfo:
		levelStr = "INFO"
		levelColor = infoColor
	}

	component := ""
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" {
			component = strings.ToUpper(a.Value.String())
			return false
		}
		return true
	})

	fmt.Fprintf(h.w, "%s", timeStr)

	if component != "" {
		if levelStr != "INFO" {
			fmt.Fprintf(h.w, " %s", levelColor.Sprintf("[%s]", levelStr))
		}
		compColor := getComponentColor(component)
		fmt.Fprintf(h.w, " %s\n", colorizeWithResets(compColor, fmt.Sprintf("[%s] %s", component, r.Message)))
	} else {
		displayMsg := fmt.Sprintf("[%s] %s", levelStr, r.Message)
		if levelStr == "INFO" && strings.HasPrefix(r.Message, "[") {
			if idx := strings.Index(r.Message, "]"); idx > 0 && idx < 20 {
				displayMsg = r.Message
			}
		}
		fmt.Fprintf(h.w, " %s\n", colorizeWithResets(levelColor, displayMsg))
	}

	return nil
}

func (h *BotLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *BotLogHandler) WithGroup(name string) slog.Handler       { return h }

// --- Formatting Helpers ---

func getComponentColor(name string) *color.Color {
	switch name {
	case "DATABASE":
		return databaseColor
	case "STORE":
		return storeColor
	case "MEOW":
		return meowColor
	case "RESET":
		return resetColor
	case "TALLY":
		return tallyColor
	default:
		return color.New(color.FgCyan)
	}
}

func colorizeWithResets(c *color.Color, text string) string {
	if !strings.Contains(text, "\x1b[0m") {
		return c.Sprint(text)
	}

	marker := "@@@MSG@@@"
	wrapped := c.Sprint(marker)
	idx := strings.Index(wrapped, marker)
	if idx <= 0 {
		return text
	}
	startSeq := wrapped[:idx]

	modifiedText := strings.ReplaceAll(text, "\x1b[0m", "\x1b[0m"+startSeq)
	return c.Sprint(modifiedText)
}

// --- ANSI Stripper ---

type StripANSIWriter struct {
	w  io.Writer
	re *regexp.Regexp
}

func NewStripANSIWriter(w io.Writer) *StripANSIWriter {
	return &StripANSIWriter{
		w:  w,
		re: regexp.MustCompile(`\x1b\[[0-9;]*m`),
	}
}

func (s *StripANSIWriter) Write(p []byte) (n int, err error) {
	clean := s.re.ReplaceAll(p, []byte(""))
	_, err = s.w.Write(clean)
	return len(p), err
}

// --- Message Constants ---

const (
	// --- Infrastructure & Lifecycle ---
	MsgConfigFailedToLoad  = "Failed to load config: %v"
	MsgConfigMissingToken  = "DISCORD_TOKEN is not set in .env file"
	MsgDatabaseInitSuccess = "Database initialized successfully"
	MsgDatabaseTableError  = "Failed to create table: %w"
	MsgDatabasePragmaError = "Failed to set pragma %s: %w"
	MsgDaemonStarting      = "Starting..."
	MsgBotStarting         = "Starting %s..."
	MsgBotReady            = "%s is ready! (ID: %s) (PID: %d) (Took: %dms)"
	MsgBotShutdown         = "Shutting down %s..."
	MsgBotKillingOld       = "Killing running instance... (PID: %d)"
	MsgBotOldTerminated    = "Old instance terminated."
	MsgBotRegisterFail     = "Command registration failed: %v"
	MsgBotAPIStatusError   = "discord API returned status %d"
	MsgGenericError        = "%v"

	// --- Command Loader & Registry ---
	MsgLoaderSyncCommands       = "Syncing %s commands..."
	MsgLoaderCleanup            = "[CLEANUP] Removing commands from previous dev guild: %s"
	MsgLoaderDevStarting        = "[DEV] Registering commands to guild: %s"
	MsgLoaderDevRegistered      = "[DEV] Registered: %s"
	MsgLoaderDevFail            = "[DEV] Registration failed: %v"
	MsgLoaderDevGlobalClear     = "[DEV] Verifying global commands are cleared..."
	MsgLoaderDevGlobalClearFail = "[DEV] Global clear skipped (likely rate limited): %v"
	MsgLoaderProdStarting       = "[PROD] Registering commands globally..."
	MsgLoaderProdRegistered     = "[PROD] Registered: %s"
	MsgLoaderProdFail           = "[PROD] Global registration failed: %w"
	MsgLoaderScanStarting       = "[SCAN] Checking all guilds for ghost commands..."
	MsgLoaderScanCleared        = "[SCAN] Cleared ghost commands from: %s (%s)"
	MsgLoaderPanicRecovered     = "Panic recovered in handler: %v"
	MsgLoaderUpToDate           = "[LOADER] Commands are up to date. (Hash: %s)"

	// --- Store System ---
	MsgStoreLoadFail     = "Failed to load %s, starting empty: %v"
	MsgStoreCorrupt      = "%s is corrupt, resetting to empty: %v"
	MsgStoreSaveFail     = "Failed to save %s: %v"
	MsgStoreLoaded       = "Loaded %s (%d entries)"
	MsgStoreAuditFail    = "Failed to record strike in audit log: %v"
	MsgStoreAuditSummary = "Strike audit log unavailable: %v"

	// --- Meow Enforcement ---
	MsgMeowStrike       = "Strike %d for user %s: %q"
	MsgMeowWarnFail     = "Failed to send warning reply: %v"
	MsgMeowWarnSkipped  = "Warning reply skipped (rate limited) for user %s"
	MsgMeowDeleteFail   = "Failed to delete message %s: %v"
	MsgMeowNoChannel    = "MEOW_CHANNEL_ID is not set, enforcement disabled"
	MsgMeowWarning      = "❌ **Meow?!** <@%s>, this is a meow-only zone! That's strike **%d** for you! 😾"

	// --- Weekly Reset ---
	MsgResetParserInitFail = "Failed to initialize naturaltime parser: %v"
	MsgResetWhenParseFail  = "Could not parse RESET_WHEN %q, using default schedule"
	MsgResetScheduleSet    = "Weekly reset scheduled for %s at %02d:00"
	MsgResetNextFiring     = "Next weekly reset at %s (in %s)"
	MsgResetAnnounceFail   = "Failed to send weekly announcement, keeping tallies: %v"
	MsgResetCleared        = "Weekly reset complete, cleared %d tally entries"
	MsgResetShutdown       = "Shutting down Weekly Reset..."
	MsgResetQuietWeek      = "meow 😺"
	MsgResetReportHeader   = "📊 **Weekly Meow Report** 📊\n\n"
	MsgResetReportWorst    = "🙀 **Most Non-Meows:** <@%s> with **%d** strike(s)!\n"
	MsgResetReportBest     = "😺 **Fewest Non-Meows:** <@%s> with only **%d** strike(s)!\n"
	MsgResetReportSole     = "😺 **Only participant:** <@%s>\n"
	MsgResetReportFooter   = "\n✨ Tallies have been reset! ✨\n\nmeow"

	// --- Tally Commands ---
	MsgTallyRespondError    = "Failed to respond to interaction: %v"
	ErrTallyOwnerOnly       = "❌ Only the bot owner can use this command!"
	ErrTallyMissingUser     = "❌ No user provided."
	MsgTallyImmuneOn        = "✅ You are now immune to meow enforcement!"
	MsgTallyImmuneOff       = "🚫 You are no longer immune to meow enforcement!"
	MsgTallyResetDone       = "✅ Reset **%d** strike(s) for %s"
	MsgTallyResetNothing    = "ℹ️ %s has no strikes to reset."
	MsgTallyBoardEmpty      = "✅ No strikes recorded yet! Everyone is being good meowers! 😺"
	MsgTallyBoardTitle      = "🏆 Strike Leaderboard"
	MsgTallyBoardDesc       = "Current standings for non-meow violations"
	MsgTallyBoardRankings   = "Rankings"
	MsgTallyBoardFooter     = "Next reset: %s"
	MsgTallyBoardFooterFull = "Next reset: %s • All-time strikes: %d"

	// --- When Command ---
	MsgWhenTitle      = "📅 Next Weekly Reset"
	MsgWhenDesc       = "The next reset will occur on:"
	MsgWhenFieldDate  = "🕐 Date & Time"
	MsgWhenFieldLeft  = "⏱️ Time Remaining"
	MsgWhenFooter     = "Strikes will be reset and leaderboard announced!"
	MsgWhenLessMinute = "less than a minute"
)
