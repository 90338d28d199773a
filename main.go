package main

import (
	"flag"
	"io/ioutil"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/golang/glog"

	"github.com/jyane/jchip8/chip8"
	"github.com/jyane/jchip8/ui"
)

var (
	path       = flag.String("path", "./rom/breakout.ch8", "path to CHIP-8 program image")
	width      = flag.Int("width", chip8.Width*10, "window width")
	height     = flag.Int("height", chip8.Height*10, "window height")
	hz         = flag.Int("hz", 600, "cycles per second, 0 runs unthrottled")
	term       = flag.Bool("term", false, "render on the terminal instead of a window")
	mute       = flag.Bool("mute", false, "disable the buzzer")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	debug      = flag.Bool("debug", false, "run as debug mode")
)

// readFile reads file as bytes
func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func init() {
	// GLFW must run on the main thread.
	runtime.LockOSThread()
}

func run() error {
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			glog.Fatal("Failed to create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			glog.Fatal("Failed to start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}
	buf, err := readFile(*path)
	if err != nil {
		glog.Fatalln("Failed to read: "+*path, err)
	}
	console, err := chip8.NewConsole(buf, *debug)
	if err != nil {
		glog.Fatalln("Failed to initiate Console: ", err)
	}
	opts := ui.Options{Width: *width, Height: *height, Hz: *hz, Mute: *mute}
	if *debug {
		// One command per frame, the prompt does the pacing.
		opts.Hz = 0
	}
	if *term {
		if *debug {
			glog.Fatalln("-debug and -term both need stdin")
		}
		return ui.StartTerminal(console, opts)
	}
	return ui.Start(console, opts)
}

func main() {
	flag.Parse()
	defer glog.Flush()
	if err := run(); err != nil {
		glog.Errorf("Stopped: %v", err)
		glog.Flush()
		os.Exit(1)
	}
}
