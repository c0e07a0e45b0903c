package main

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glWindow presents emulator frames as a single texture drawn over a
// full-viewport quad, and implements emulator.HostWindow.
type glWindow struct {
	win     *glfw.Window
	width   int
	height  int
	texture uint32
	vao     uint32
	program uint32
}

const vertexShaderSrc = `
#version 330 core
layout (location = 0) in vec2 pos;
layout (location = 1) in vec2 inUV;
out vec2 uv;
void main() {
	uv = inUV;
	gl_Position = vec4(pos, 0.0, 1.0);
}
` + "\x00"

const fragmentShaderSrc = `
#version 330 core
in vec2 uv;
out vec4 color;
uniform sampler2D frame;
void main() {
	color = texture(frame, uv);
}
` + "\x00"

func newGlWindow(win *glfw.Window, width, height int) *glWindow {
	program, err := compileProgram(vertexShaderSrc, fragmentShaderSrc)
	if err != nil {
		panic(fmt.Sprintf("hack_emulator: compiling shaders: %s", err))
	}

	// two triangles covering the viewport, paired with the texture's UVs;
	// the display's video memory is top-to-bottom so v is flipped.
	vertices := []float32{
		-1, 1, 0, 0,
		-1, -1, 0, 1,
		1, -1, 1, 1,

		-1, 1, 0, 0,
		1, -1, 1, 1,
		1, 1, 1, 0,
	}

	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(2*4))
	gl.EnableVertexAttribArray(1)

	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

	gl.Viewport(0, 0, int32(width), int32(height))

	return &glWindow{win: win, width: width, height: height, texture: texture, vao: vao, program: program}
}

// Present uploads pixels as the frame's texture and draws it, implementing
// emulator.HostWindow.
func (w *glWindow) Present(width, height int, pixels []byte) error {
	if width != w.width || height != w.height {
		return fmt.Errorf("hack_emulator: frame is %dx%d, window expects %dx%d", width, height, w.width, w.height)
	}

	gl.ClearColor(1, 1, 1, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.BindTexture(gl.TEXTURE_2D, w.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))

	gl.UseProgram(w.program)
	gl.BindVertexArray(w.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	return nil
}

// RequestRedraw is a no-op here: the host loop in main.go already redraws
// every iteration, so there's nothing to schedule.
func (w *glWindow) RequestRedraw() {}

func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertex, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragment, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertex)
	gl.AttachShader(program, fragment)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("link failure: %s", log)
	}

	gl.DeleteShader(vertex)
	gl.DeleteShader(fragment)
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("compile failure: %s", log)
	}
	return shader, nil
}
