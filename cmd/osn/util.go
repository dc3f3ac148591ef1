package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/danderson/obsipc"
)

type indenter struct {
	prefix     string
	indentNext bool
}

func (i *indenter) v(v any) {
	fmt.Fprintf(i, "%v\n", v)
}

func (i *indenter) f(msg string, args ...any) {
	fmt.Fprintf(i, msg+"\n", args...)
}

func (i *indenter) Write(bs []byte) (int, error) {
	ret := 0
	for len(bs) > 0 {
		if i.indentNext {
			i.indentNext = false
			_, err := io.WriteString(os.Stdout, i.prefix)
			if err != nil {
				return ret, err
			}
		}

		var wr []byte
		idx := bytes.IndexByte(bs, '\n')
		if idx >= 0 {
			i.indentNext = true
			wr, bs = bs[:idx+1], bs[idx+1:]
		} else {
			wr, bs = bs, nil
		}

		n, err := os.Stdout.Write(wr)
		ret += n
		if err != nil {
			return ret, err
		}
	}
	return ret, nil
}

func (i *indenter) indent(n int) {
	i.prefix = strings.Repeat("  ", n)
}

func parseArgs(args []string) ([]obsipc.Value, error) {
	ret := make([]obsipc.Value, 0, len(args))
	for _, a := range args {
		v, err := parseArg(a)
		if err != nil {
			return nil, err
		}
		ret = append(ret, v)
	}
	return ret, nil
}

// parseArg parses a kind:value command line argument.
func parseArg(arg string) (obsipc.Value, error) {
	if arg == "n" || arg == "n:" {
		return obsipc.Null(), nil
	}
	kind, val, ok := strings.Cut(arg, ":")
	if !ok || len(kind) != 1 {
		return obsipc.Value{}, fmt.Errorf("argument %q is not of the form kind:value", arg)
	}
	fail := func(err error) (obsipc.Value, error) {
		return obsipc.Value{}, fmt.Errorf("parsing argument %q: %w", arg, err)
	}
	switch kind {
	case "f":
		f, err := strconv.ParseFloat(val, 32)
		if err != nil {
			return fail(err)
		}
		return obsipc.Float32(float32(f)), nil
	case "d":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fail(err)
		}
		return obsipc.Float64(f), nil
	case "i":
		i, err := strconv.ParseInt(val, 0, 32)
		if err != nil {
			return fail(err)
		}
		return obsipc.Int32(int32(i)), nil
	case "x":
		i, err := strconv.ParseInt(val, 0, 64)
		if err != nil {
			return fail(err)
		}
		return obsipc.Int64(i), nil
	case "u":
		u, err := strconv.ParseUint(val, 0, 32)
		if err != nil {
			return fail(err)
		}
		return obsipc.Uint32(uint32(u)), nil
	case "t":
		u, err := strconv.ParseUint(val, 0, 64)
		if err != nil {
			return fail(err)
		}
		return obsipc.Uint64(u), nil
	case "s":
		return obsipc.String(val), nil
	case "b":
		bs, err := hex.DecodeString(val)
		if err != nil {
			return fail(err)
		}
		return obsipc.Binary(bs), nil
	default:
		return obsipc.Value{}, fmt.Errorf("argument %q has unknown kind %q", arg, kind)
	}
}
