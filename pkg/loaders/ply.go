package loaders

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/go-diffuse-pathtracer/pkg/core"
)

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format      string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version     string // Usually "1.0"
	VertexCount int
	FaceCount   int
	VertexProps []PLYProperty
	FaceProps   []PLYProperty
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
	DataType string // For list properties, the type of the data
}

// PLYData contains the vertex positions and triangle indices of a PLY mesh.
// Polygons with more than three vertices are fanned into triangles.
type PLYData struct {
	Vertices []core.Vec3 // Vertex positions (x, y, z)
	Faces    []int       // Triangle indices (3 per triangle)
}

// LoadPLYFile loads a PLY file from disk
func LoadPLYFile(filename string) (*PLYData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PLY file")
	}
	defer file.Close()

	data, err := LoadPLY(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", filename)
	}
	return data, nil
}

// LoadPLY reads PLY data in ascii or binary form
func LoadPLY(r io.Reader) (*PLYData, error) {
	reader := bufio.NewReader(r)

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse PLY header")
	}

	var elements elementReader
	switch header.Format {
	case "ascii":
		elements = &asciiReader{scanner: bufio.NewScanner(reader)}
	case "binary_little_endian":
		elements = &binaryReader{reader: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		elements = &binaryReader{reader: reader, order: binary.BigEndian}
	default:
		return nil, errors.Errorf("unsupported PLY format: %s", header.Format)
	}

	data := &PLYData{
		Vertices: make([]core.Vec3, 0, header.VertexCount),
		Faces:    make([]int, 0, header.FaceCount*3),
	}

	for i := 0; i < header.VertexCount; i++ {
		var position [3]float64
		for _, prop := range header.VertexProps {
			if prop.IsList {
				if _, err := elements.readList(prop); err != nil {
					return nil, errors.Wrapf(err, "vertex %d", i)
				}
				continue
			}
			value, err := elements.readScalar(prop.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "vertex %d property %s", i, prop.Name)
			}
			switch prop.Name {
			case "x":
				position[0] = value
			case "y":
				position[1] = value
			case "z":
				position[2] = value
			}
		}
		data.Vertices = append(data.Vertices, core.NewVec3(position[0], position[1], position[2]))
	}

	for i := 0; i < header.FaceCount; i++ {
		for _, prop := range header.FaceProps {
			if !prop.IsList {
				if _, err := elements.readScalar(prop.Type); err != nil {
					return nil, errors.Wrapf(err, "face %d property %s", i, prop.Name)
				}
				continue
			}

			indices, err := elements.readList(prop)
			if err != nil {
				return nil, errors.Wrapf(err, "face %d", i)
			}
			if prop.Name != "vertex_indices" && prop.Name != "vertex_index" {
				continue
			}
			if len(indices) < 3 {
				return nil, errors.Errorf("face %d has %d vertices", i, len(indices))
			}

			// Fan triangulation around the first vertex
			for j := 1; j+1 < len(indices); j++ {
				data.Faces = append(data.Faces, int(indices[0]), int(indices[j]), int(indices[j+1]))
			}
		}
	}

	return data, nil
}

// parsePLYHeader reads header lines up to and including end_header
func parsePLYHeader(reader *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}

	magic, err := reader.ReadString('\n')
	if err != nil {
		return nil, errors.Wrap(err, "failed to read magic number")
	}
	if strings.TrimSpace(magic) != "ply" {
		return nil, errors.New("not a PLY file")
	}

	var currentElement string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, errors.Wrap(err, "header ended before end_header")
		}
		line = strings.TrimSpace(line)
		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) < 3 {
				return nil, errors.Errorf("invalid format line: %q", line)
			}
			header.Format = parts[1]
			header.Version = parts[2]
		case "element":
			if len(parts) < 3 {
				return nil, errors.Errorf("invalid element line: %q", line)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil {
				return nil, errors.Errorf("invalid element count: %s", parts[2])
			}
			currentElement = parts[1]
			switch currentElement {
			case "vertex":
				header.VertexCount = count
			case "face":
				header.FaceCount = count
			}
		case "property":
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			switch currentElement {
			case "vertex":
				header.VertexProps = append(header.VertexProps, prop)
			case "face":
				header.FaceProps = append(header.FaceProps, prop)
			}
		}
	}

	if header.Format == "" {
		return nil, errors.New("missing format line")
	}

	return header, nil
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, errors.New("invalid property definition")
	}

	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, errors.New("invalid list property definition")
		}
		return PLYProperty{IsList: true, ListType: parts[1], DataType: parts[2], Name: parts[3]}, nil
	}

	return PLYProperty{Type: parts[0], Name: parts[1]}, nil
}

// elementReader decodes property values from the body of a PLY file
type elementReader interface {
	readScalar(dataType string) (float64, error)
	readList(prop PLYProperty) ([]float64, error)
}

type asciiReader struct {
	scanner *bufio.Scanner
	fields  []string
}

func (a *asciiReader) next() (string, error) {
	for len(a.fields) == 0 {
		if !a.scanner.Scan() {
			if err := a.scanner.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		a.fields = strings.Fields(a.scanner.Text())
	}
	field := a.fields[0]
	a.fields = a.fields[1:]
	return field, nil
}

func (a *asciiReader) readScalar(string) (float64, error) {
	field, err := a.next()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(field, 64)
}

func (a *asciiReader) readList(prop PLYProperty) ([]float64, error) {
	count, err := a.readScalar(prop.ListType)
	if err != nil {
		return nil, err
	}
	values := make([]float64, int(count))
	for i := range values {
		if values[i], err = a.readScalar(prop.DataType); err != nil {
			return nil, err
		}
	}
	return values, nil
}

type binaryReader struct {
	reader io.Reader
	order  binary.ByteOrder
}

func (b *binaryReader) readScalar(dataType string) (float64, error) {
	size := getTypeSize(dataType)
	if size == 0 {
		return 0, errors.Errorf("unsupported property type: %s", dataType)
	}

	var buf [8]byte
	if _, err := io.ReadFull(b.reader, buf[:size]); err != nil {
		return 0, err
	}

	switch dataType {
	case "char", "int8":
		return float64(int8(buf[0])), nil
	case "uchar", "uint8":
		return float64(buf[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(buf[:2]))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(buf[:2])), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(buf[:4]))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(buf[:4])), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(buf[:4]))), nil
	default: // "double", "float64"
		return math.Float64frombits(b.order.Uint64(buf[:8])), nil
	}
}

func (b *binaryReader) readList(prop PLYProperty) ([]float64, error) {
	count, err := b.readScalar(prop.ListType)
	if err != nil {
		return nil, err
	}
	values := make([]float64, int(count))
	for i := range values {
		if values[i], err = b.readScalar(prop.DataType); err != nil {
			return nil, err
		}
	}
	return values, nil
}

// getTypeSize returns the size in bytes of a PLY data type, or 0 if unknown
func getTypeSize(dataType string) int {
	switch dataType {
	case "char", "uchar", "int8", "uint8":
		return 1
	case "short", "ushort", "int16", "uint16":
		return 2
	case "int", "uint", "int32", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	default:
		return 0
	}
}
