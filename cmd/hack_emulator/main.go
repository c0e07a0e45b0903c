package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/teris-io/cli"

	"hackforge.dev/n2t/pkg/emulator"
	"hackforge.dev/n2t/pkg/hack"
)

const inputFilename = "Prog.hack"

var Description = strings.ReplaceAll(`
The Hack Emulator loads a compiled Prog.hack image from the working directory and
executes it against the Hack computer architecture, presenting the memory mapped
512x256 display in a window while the CPU runs on its own thread.
`, "\n", " ")

var HackEmulator = cli.New(Description).WithAction(Handler)

func init() {
	// GLFW/GL must be driven from the thread that created the context.
	runtime.LockOSThread()
}

func Handler(args []string, options map[string]string) int {
	if err := run(); err != nil {
		fmt.Printf("[err] %s\n", err)
		return -1
	}
	return 0
}

func run() error {
	f, err := os.Open(inputFilename)
	if err != nil {
		return fmt.Errorf("unable to open input file: %s", err)
	}
	defer f.Close()

	rom, err := hack.LoadROM(f)
	if err != nil {
		return fmt.Errorf("unable to load rom: %s", err)
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("unable to initialize glfw: %s", err)
	}
	defer glfw.Terminate()

	// logical display is 512x256; the physical window is DPI-scaled.
	scaleX, scaleY := glfw.GetPrimaryMonitor().GetContentScale()
	core := emulator.New(rom, float64(scaleX), float64(scaleY))
	physical := core.PhysicalSize()

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(physical.Width, physical.Height, "Hack Emulator", nil, nil)
	if err != nil {
		return fmt.Errorf("unable to create window: %s", err)
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		return fmt.Errorf("unable to initialize gl: %s", err)
	}

	win := newGlWindow(window, physical.Width, physical.Height)
	core.OnResume(win)

	for !window.ShouldClose() {
		glfw.PollEvents()
		if err := core.OnRedrawRequested(win); err != nil {
			fmt.Printf("[err] rendering frame: %s\n", err)
		}
		window.SwapBuffers()
	}
	core.OnWindowClose()
	return nil
}

func main() { os.Exit(HackEmulator.Run(os.Args, os.Stdout)) }
