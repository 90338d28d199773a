package ui

import (
	"fmt"
	"image"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
)

const vertexShader = `
#version 330 core
in vec2 vert;
in vec2 vertTexCoord;
out vec2 fragTexCoord;
void main() {
	fragTexCoord = vertTexCoord;
	gl_Position = vec4(vert, 0.0, 1.0);
}
` + "\x00"

const fragmentShader = `
#version 330 core
uniform sampler2D tex;
in vec2 fragTexCoord;
out vec4 outputColor;
void main() {
	outputColor = texture(tex, fragTexCoord);
}
` + "\x00"

// A full screen quad as a triangle strip, x, y, u, v. The texture's first row is the top.
var quad = []float32{
	-1, 1, 0, 0,
	-1, -1, 0, 1,
	1, 1, 1, 0,
	1, -1, 1, 1,
}

// screen draws the framebuffer as a texture stretched over the window.
type screen struct {
	program uint32
	vao     uint32
	texture uint32
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("Failed to compile %v: %v", source, log)
	}
	return shader, nil
}

// newProgram links the vertex and fragment shaders.
func newProgram() (uint32, error) {
	vs, err := compileShader(vertexShader, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := compileShader(fragmentShader, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("Failed to link program: %v", log)
	}
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)
	return program, nil
}

// newScreen sets up the shader program, the quad and an empty texture.
// It requires a current OpenGL context.
func newScreen(width, height int) (*screen, error) {
	program, err := newProgram()
	if err != nil {
		return nil, err
	}
	s := &screen{program: program}
	gl.UseProgram(program)
	gl.Uniform1i(gl.GetUniformLocation(program, gl.Str("tex\x00")), 0)

	gl.GenVertexArrays(1, &s.vao)
	gl.BindVertexArray(s.vao)
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quad)*4, gl.Ptr(quad), gl.STATIC_DRAW)
	vert := uint32(gl.GetAttribLocation(program, gl.Str("vert\x00")))
	gl.EnableVertexAttribArray(vert)
	gl.VertexAttribPointer(vert, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(0))
	texCoord := uint32(gl.GetAttribLocation(program, gl.Str("vertTexCoord\x00")))
	gl.EnableVertexAttribArray(texCoord)
	gl.VertexAttribPointer(texCoord, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(2*4))

	gl.GenTextures(1, &s.texture)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, s.texture)
	// Nearest keeps the scaled pixels sharp.
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.ClearColor(0, 0, 0, 1)
	return s, nil
}

// updateTexture uploads a frame to the texture.
func (s *screen) updateTexture(img *image.RGBA) {
	gl.BindTexture(gl.TEXTURE_2D, s.texture)
	size := img.Bounds().Size()
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(size.X), int32(size.Y), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
}

// draw draws the textured quad.
func (s *screen) draw() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(s.program)
	gl.BindVertexArray(s.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, int32(len(quad)/4))
}
