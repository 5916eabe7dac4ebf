package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"go.uber.org/multierr"

	"github.com/robert-malhotra/go-hdf5/hdf5"
)

// TypeInfo describes a datatype for output.
type TypeInfo struct {
	Class     string       `json:"class" yaml:"class"`
	Size      int          `json:"size" yaml:"size"`
	Complex   bool         `json:"complex" yaml:"complex"`
	Width     string       `json:"width,omitempty" yaml:"width,omitempty"`
	Order     string       `json:"order" yaml:"order"`
	Precision int          `json:"precision,omitempty" yaml:"precision,omitempty"`
	Members   []MemberInfo `json:"members,omitempty" yaml:"members,omitempty"`
	Dims      []int        `json:"dims,omitempty" yaml:"dims,omitempty"`
	GoType    string       `json:"go_type,omitempty" yaml:"go_type,omitempty"`
	Message   string       `json:"message" yaml:"message"`
}

// MemberInfo describes one compound member.
type MemberInfo struct {
	Name   string `json:"name" yaml:"name"`
	Offset int    `json:"offset" yaml:"offset"`
	Class  string `json:"class" yaml:"class"`
	Size   int    `json:"size" yaml:"size"`
}

// Text renders the description one field per line.
func (info *TypeInfo) Text(w io.Writer) error {
	line := func(label string, value interface{}) {
		fmt.Fprintf(w, "%-10s %v\n", label+":", value)
	}
	line("class", info.Class)
	line("size", info.Size)
	line("complex", info.Complex)
	if info.Width != "" {
		line("width", info.Width)
	}
	line("order", info.Order)
	if info.Precision > 0 {
		line("precision", info.Precision)
	}
	if len(info.Members) > 0 {
		fmt.Fprintln(w, "members:")
		for _, m := range info.Members {
			fmt.Fprintf(w, "  %-4s offset=%-4d %s size=%d\n", m.Name, m.Offset, m.Class, m.Size)
		}
	}
	if len(info.Dims) > 0 {
		line("dims", info.Dims)
	}
	if info.GoType != "" {
		line("go type", info.GoType)
	}
	_, err := fmt.Fprintf(w, "%-10s %s\n", "message:", info.Message)
	return err
}

// describe collects the description of h. Every handle it opens is closed
// before it returns.
func describe(h *hdf5.Type) (*TypeInfo, error) {
	class, err := h.Class()
	if err != nil {
		return nil, err
	}
	size, err := h.Size()
	if err != nil {
		return nil, err
	}
	info := &TypeInfo{
		Class:   class.String(),
		Size:    size,
		Complex: hdf5.IsComplex(h),
	}

	order, err := hdf5.GetOrder(h)
	if err != nil && !errors.Is(err, hdf5.ErrUnsupportedByteOrder) {
		return nil, err
	}
	info.Order = order.String()

	if info.Complex {
		if info.Precision, err = hdf5.ComplexPrecision(h); err != nil {
			return nil, err
		}
		if w, err := hdf5.ComplexWidth(h); err == nil {
			info.Width = w.String()
		}
	} else if info.Precision, err = h.Precision(); err != nil {
		return nil, err
	}

	switch class {
	case hdf5.ClassCompound:
		n, err := h.NumMembers()
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			m, err := memberInfo(h, i)
			if err != nil {
				return nil, err
			}
			info.Members = append(info.Members, m)
		}
	case hdf5.ClassArray:
		if info.Dims, err = h.Dims(); err != nil {
			return nil, err
		}
	}

	if gt, err := h.GoType(); err == nil {
		info.GoType = gt.String()
	}

	raw, err := h.Encode()
	if err != nil {
		return nil, err
	}
	info.Message = hex.EncodeToString(raw)
	return info, nil
}

func memberInfo(h *hdf5.Type, i int) (m MemberInfo, err error) {
	if m.Name, err = h.MemberName(i); err != nil {
		return m, err
	}
	if m.Offset, err = h.MemberOffset(i); err != nil {
		return m, err
	}
	mt, err := h.MemberType(i)
	if err != nil {
		return m, err
	}
	defer func() { err = multierr.Append(err, mt.Close()) }()

	class, err := mt.Class()
	if err != nil {
		return m, err
	}
	m.Class = class.String()
	m.Size, err = mt.Size()
	return m, err
}
