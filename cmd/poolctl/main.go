/*
Package main implements poolctl, a command line tool for pool program
instructions.

It converts between the JSON form of a command and its binary instruction
payload, and inspects payloads field by field the way the program decodes
them.

Usage:

	poolctl -in order.json encode
	poolctl -data 03aa...ff decode
	poolctl -config poolctl.toml -encoding base64 -data AzIy... inspect

The JSON form is an envelope: {"type": "create_order", "data": {...}}.
*/
package main

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/0x5487/poolbot"
	"github.com/0x5487/poolbot/protocol"
	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
)

var (
	configPath = flag.String("config", "", "Path to a poolctl TOML config file")
	inPath     = flag.String("in", "-", "Input file, - reads stdin")
	data       = flag.String("data", "", "Encoded payload for decode and inspect, takes precedence over -in")
	encoding   = flag.String("encoding", "", "Payload encoding, hex or base64 (default from config)")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] encode|decode|inspect\n\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel).With().Timestamp().Logger()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}
	if *encoding != "" {
		cfg.OutputEncoding = strings.ToLower(strings.TrimSpace(*encoding))
		if err := checkEncoding(cfg.OutputEncoding); err != nil {
			log.Fatal().Err(err).Msg("configuration error")
		}
	}
	log = log.Level(cfg.LogLevel)
	poolbot.SetLogger(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel(cfg.LogLevel)})))

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	a := &app{cfg: cfg, log: log, out: os.Stdout}
	if err := a.run(flag.Arg(0), *inPath, *data); err != nil {
		log.Fatal().Err(err).Str("command", flag.Arg(0)).Msg("poolctl failed")
	}
}

type app struct {
	cfg config
	log zerolog.Logger
	out io.Writer
}

func (a *app) run(command, in, payload string) error {
	switch command {
	case "encode":
		input, err := readInput(in)
		if err != nil {
			return err
		}
		return a.encode(input)
	case "decode", "inspect":
		if payload == "" {
			input, err := readInput(in)
			if err != nil {
				return err
			}
			payload = string(input)
		}
		raw, err := decodePayload(payload, a.cfg.OutputEncoding)
		if err != nil {
			return err
		}
		if command == "decode" {
			return a.decode(raw)
		}
		return a.inspect(raw)
	}
	return fmt.Errorf("unknown command %q", command)
}

// encode reads a JSON envelope and writes the encoded instruction payload.
func (a *app) encode(input []byte) error {
	cmd, err := protocol.JSONSerializer{}.Unmarshal(input)
	if err != nil {
		return fmt.Errorf("parse command: %w", err)
	}
	if c, ok := cmd.(*protocol.Create); ok {
		a.checkExchange(c)
	}

	payload, err := protocol.BinarySerializer{}.Marshal(cmd)
	if err != nil {
		return err
	}

	a.log.Debug().Str("opcode", cmd.Opcode().String()).Int("bytes", len(payload)).Msg("encoded instruction")
	_, err = fmt.Fprintln(a.out, encodePayload(payload, a.cfg.OutputEncoding))
	return err
}

// decode writes the JSON envelope of a payload.
func (a *app) decode(payload []byte) error {
	cmd, err := protocol.Unpack(payload)
	if err != nil {
		return err
	}

	out, err := protocol.JSONSerializer{Indent: "  "}.Marshal(cmd)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(out))
	return err
}

// inspect runs the payload through a Processor for the configured program
// and dumps every decoded field with its value.
func (a *app) inspect(payload []byte) error {
	commandLog := poolbot.NewMemoryCommandLog()
	p := poolbot.NewProcessor(a.cfg.ProgramID, &inspectHandler{app: a}, poolbot.WithCommandLog(commandLog))

	fmt.Fprintf(a.out, "%-18s %s\n", "program", a.cfg.ProgramID)
	fmt.Fprintf(a.out, "%-18s %d\n", "wire_version", poolbot.ProtocolVersion)
	fmt.Fprintf(a.out, "%-18s %d bytes\n", "length", len(payload))

	record, err := p.Process(context.Background(), &poolbot.Submission{
		ProgramID: a.cfg.ProgramID,
		Data:      payload,
	})
	if record != nil {
		fmt.Fprintf(a.out, "%-18s %s\n", "trace_id", record.TraceID)
		fmt.Fprintf(a.out, "%-18s %s\n", "status", record.Status)
	}

	var decodeErr *protocol.DecodeError
	if errors.As(err, &decodeErr) {
		fmt.Fprintf(a.out, "%-18s %s\n", "error", decodeErr.Err)
		if decodeErr.Field != "" {
			fmt.Fprintf(a.out, "%-18s %s\n", "field", decodeErr.Field)
			fmt.Fprintf(a.out, "%-18s %d\n", "offset", decodeErr.Offset)
		}
	}
	return err
}

type inspectHandler struct {
	app *app
}

func (h *inspectHandler) Init(_ context.Context, cmd *protocol.Init, _ solana.AccountMetaSlice) error {
	return h.dump(cmd)
}

func (h *inspectHandler) Create(_ context.Context, cmd *protocol.Create, _ solana.AccountMetaSlice) error {
	h.app.checkExchange(cmd)
	return h.dump(cmd)
}

func (h *inspectHandler) Deposit(_ context.Context, cmd *protocol.Deposit, _ solana.AccountMetaSlice) error {
	return h.dump(cmd)
}

func (h *inspectHandler) CreateOrder(_ context.Context, cmd *protocol.CreateOrder, _ solana.AccountMetaSlice) error {
	if err := h.dump(cmd); err != nil {
		return err
	}
	_, err := fmt.Fprintf(h.app.out, "%-18s %s\n", "ratio", poolbot.RatioToDecimal(cmd.TradeRatio).StringFixed(6))
	return err
}

func (h *inspectHandler) CancelOrder(_ context.Context, cmd *protocol.CancelOrder, _ solana.AccountMetaSlice) error {
	return h.dump(cmd)
}

func (h *inspectHandler) SettleFunds(_ context.Context, cmd *protocol.SettleFunds, _ solana.AccountMetaSlice) error {
	return h.dump(cmd)
}

func (h *inspectHandler) Redeem(_ context.Context, cmd *protocol.Redeem, _ solana.AccountMetaSlice) error {
	return h.dump(cmd)
}

// dump writes one line per struct field, named by its JSON tag.
func (h *inspectHandler) dump(cmd protocol.Command) error {
	if _, err := fmt.Fprintf(h.app.out, "%-18s %s (%d)\n", "opcode", cmd.Opcode(), uint8(cmd.Opcode())); err != nil {
		return err
	}

	v := reflect.ValueOf(cmd).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == "" {
			name = t.Field(i).Name
		}
		if _, err := fmt.Fprintf(h.app.out, "%-18s %v\n", name, v.Field(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) checkExchange(c *protocol.Create) {
	if !c.ExchangeProgramID.Equals(a.cfg.DexProgramID) {
		a.log.Warn().
			Str("exchange_program_id", c.ExchangeProgramID.String()).
			Str("dex_program_id", a.cfg.DexProgramID.String()).
			Msg("pool exchange program differs from the configured dex")
	}
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func decodePayload(text, encoding string) ([]byte, error) {
	text = strings.TrimSpace(text)
	switch encoding {
	case encodingBase64:
		return base64.StdEncoding.DecodeString(text)
	default:
		return hex.DecodeString(strings.TrimPrefix(text, "0x"))
	}
}

func encodePayload(payload []byte, encoding string) string {
	switch encoding {
	case encodingBase64:
		return base64.StdEncoding.EncodeToString(payload)
	default:
		return hex.EncodeToString(payload)
	}
}

func slogLevel(level zerolog.Level) slog.Level {
	switch {
	case level <= zerolog.DebugLevel:
		return slog.LevelDebug
	case level == zerolog.InfoLevel:
		return slog.LevelInfo
	case level == zerolog.WarnLevel:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
