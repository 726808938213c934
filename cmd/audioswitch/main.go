// ABOUTME: Entry point for AudioSwitch, the power-aware default audio output switcher.
// ABOUTME: Runs the daemon or interactive view and offers small maintenance commands.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/777genius/audioswitch/internal/app"
	"github.com/777genius/audioswitch/internal/audio"
	"github.com/777genius/audioswitch/internal/errorhandler"
)

const version = "1.0.0"

// configEnv overrides the config file location
const configEnv = "AUDIOSWITCH_CONFIG"

func main() {
	// logToConsole=true: errors will be shown in console
	// exitOnCritical=false: let run decide the exit code
	// recoveryEnabled=true: recover from panics
	errorhandler.Init(true, false, true)

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	defer errorhandler.HandlePanic()

	command := ""
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}
	configPath := os.Getenv(configEnv)

	switch command {
	case "":
		return serve(app.ModeAuto, configPath, stderr)
	case "run":
		return serve(app.ModeHeadless, configPath, stderr)
	case "ui":
		return serve(app.ModeUI, configPath, stderr)
	case "list":
		return list(args, configPath, stdout, stderr)
	case "set-offline":
		if len(args) < 1 {
			fmt.Fprintf(stderr, "Error: device id required\n")
			printUsage(stderr)
			return 1
		}
		if err := app.SetOffline(configPath, args[0], stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	case "boot":
		action := "status"
		if len(args) > 0 {
			action = args[0]
		}
		if err := app.Boot(action, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	case "chime":
		return chime(args, configPath, stdout, stderr)
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "audioswitch v%s\n", version)
	case "help", "--help", "-h":
		printUsage(stdout)
	default:
		fmt.Fprintf(stderr, "Error: unknown command: %s\n", command)
		printUsage(stderr)
		return 1
	}
	return 0
}

func serve(mode app.Mode, configPath string, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, app.Options{Mode: mode, ConfigPath: configPath}); err != nil {
		errorhandler.HandleCriticalError(err, "AudioSwitch stopped")
		return 1
	}
	return 0
}

func list(args []string, configPath string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	playback := fs.Bool("playback", false, "List playback devices as seen by the chime player")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if !*playback {
		if err := app.ListDevices(context.Background(), configPath, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	devices, err := audio.ListDevices()
	if err != nil {
		fmt.Fprintf(stderr, "Error listing playback devices: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(stdout, "No playback devices found.")
		return 0
	}
	for i, dev := range devices {
		marker := ""
		if dev.IsDefault {
			marker = " (default)"
		}
		fmt.Fprintf(stdout, "  %d: %s%s\n", i, dev.Name, marker)
	}
	return 0
}

// chime plays the configured switch sound, or the given file, on the
// current default device.
func chime(args []string, configPath string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("chime", flag.ContinueOnError)
	fs.SetOutput(stderr)
	volumeFlag := fs.Float64("volume", -1, "Volume level (0.0 to 1.0), default from config")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	volume := cfg.Chime.Volume
	if *volumeFlag >= 0 {
		volume = *volumeFlag
	}
	if volume > 1.0 {
		fmt.Fprintf(stderr, "Error: Volume must be between 0.0 and 1.0 (got %.2f)\n", volume)
		return 1
	}

	soundPath := cfg.Chime.Sound
	if fs.NArg() > 0 {
		soundPath = fs.Arg(0)
	}
	if soundPath == "" {
		fmt.Fprintf(stderr, "Error: no chime sound configured\n")
		return 1
	}
	if _, err := os.Stat(soundPath); os.IsNotExist(err) {
		fmt.Fprintf(stderr, "Error: Sound file not found: %s\n", soundPath)
		return 1
	}
	if !audio.IsSupported(soundPath) {
		fmt.Fprintf(stderr, "Error: unsupported format %s (supported: %v)\n", filepath.Ext(soundPath), audio.SupportedFormats)
		return 1
	}

	player, err := audio.NewPlayer(volume)
	if err != nil {
		fmt.Fprintf(stderr, "Error creating audio player: %v\n", err)
		return 1
	}
	defer player.Close()

	fmt.Fprintf(stdout, "Playing: %s (volume: %d%%)\n", filepath.Base(soundPath), int(volume*100))
	if err := player.Play(soundPath); err != nil {
		fmt.Fprintf(stderr, "Error playing sound: %v\n", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "audioswitch - Switch the default audio output when the power source changes")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  audioswitch [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  (none)               Start hidden if the battery device is present, else open the picker")
	fmt.Fprintln(w, "  run                  Run in the background without the picker")
	fmt.Fprintln(w, "  ui                   Open the device picker")
	fmt.Fprintln(w, "  list [--playback]    List output devices (* marks the default)")
	fmt.Fprintln(w, "  set-offline <id>     Choose the device to use on battery")
	fmt.Fprintln(w, "  boot <action>        Launch at login: enable, disable or status")
	fmt.Fprintln(w, "  chime [--volume v] [file]")
	fmt.Fprintln(w, "                       Play the switch chime on the current default device")
	fmt.Fprintln(w, "  version              Show version information")
	fmt.Fprintln(w, "  help                 Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment Variables:")
	fmt.Fprintf(w, "  %s  Config file path (default: <config dir>/audioswitch/config.json)\n", configEnv)
	fmt.Fprintln(w, "  AUDIOSWITCH_HOME    Directory for config, preferences and logs")
}
