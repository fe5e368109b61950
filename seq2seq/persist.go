package seq2seq

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Gob checkpointing for encoder/decoder weights. Only numeric weight data is
// serialized; the caller reconstructs models with matching dimensions and
// loads into them.

type matData struct {
	R, C int
	Data []float64
}

func packMat(m *mat.Dense) matData {
	r, c := m.Dims()
	raw := mat.DenseCopyOf(m).RawMatrix()
	d := make([]float64, len(raw.Data))
	copy(d, raw.Data)
	return matData{R: r, C: c, Data: d}
}

func unpackMat(d matData, dst *mat.Dense) error {
	r, c := dst.Dims()
	if d.R != r || d.C != c {
		return fmt.Errorf("seq2seq: checkpoint matrix is %dx%d, model expects %dx%d", d.R, d.C, r, c)
	}
	dst.Copy(mat.NewDense(d.R, d.C, d.Data))
	return nil
}

type cellData struct {
	Wz, Wr, Wh matData
	Uz, Ur, Uh matData
	Bz, Br, Bh matData
}

func packCell(c *GRUCell) cellData {
	return cellData{
		Wz: packMat(c.Wz), Wr: packMat(c.Wr), Wh: packMat(c.Wh),
		Uz: packMat(c.Uz), Ur: packMat(c.Ur), Uh: packMat(c.Uh),
		Bz: packMat(c.Bz), Br: packMat(c.Br), Bh: packMat(c.Bh),
	}
}

func unpackCell(d cellData, c *GRUCell) error {
	pairs := []struct {
		src matData
		dst *mat.Dense
	}{
		{d.Wz, c.Wz}, {d.Wr, c.Wr}, {d.Wh, c.Wh},
		{d.Uz, c.Uz}, {d.Ur, c.Ur}, {d.Uh, c.Uh},
		{d.Bz, c.Bz}, {d.Br, c.Br}, {d.Bh, c.Bh},
	}
	for _, p := range pairs {
		if err := unpackMat(p.src, p.dst); err != nil {
			return err
		}
	}
	return nil
}

type checkpoint struct {
	Embedding matData

	EncFwd, EncBwd []cellData

	DecCells   []cellData
	AttnMethod string
	AttnWa     *matData
	AttnV      *matData
	Wconcat    matData
	Bconcat    matData
	Wout       matData
	Bout       matData
}

// Save writes the shared embedding and both models' weights to filename.
func Save(enc *Encoder, dec *Decoder, filename string) error {
	ck := checkpoint{
		Embedding:  packMat(enc.Embedding),
		AttnMethod: dec.attn.Method,
		Wconcat:    packMat(dec.Wconcat),
		Bconcat:    packMat(dec.Bconcat),
		Wout:       packMat(dec.Wout),
		Bout:       packMat(dec.Bout),
	}
	for _, c := range enc.fwd {
		ck.EncFwd = append(ck.EncFwd, packCell(c))
	}
	for _, c := range enc.bwd {
		ck.EncBwd = append(ck.EncBwd, packCell(c))
	}
	for _, c := range dec.cells {
		ck.DecCells = append(ck.DecCells, packCell(c))
	}
	if dec.attn.Wa != nil {
		d := packMat(dec.attn.Wa)
		ck.AttnWa = &d
	}
	if dec.attn.v != nil {
		d := packMat(dec.attn.v)
		ck.AttnV = &d
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(ck); err != nil {
		return fmt.Errorf("seq2seq: save: %w", err)
	}
	return os.WriteFile(filename, buf.Bytes(), 0o644)
}

// Load reads a checkpoint saved by Save into existing models. Encoder and
// decoder must have been constructed with the checkpoint's dimensions and
// attention method.
func Load(enc *Encoder, dec *Decoder, filename string) error {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("seq2seq: load: %w", err)
	}
	var ck checkpoint
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&ck); err != nil {
		return fmt.Errorf("seq2seq: load: %w", err)
	}

	if ck.AttnMethod != dec.attn.Method {
		return fmt.Errorf("seq2seq: load: checkpoint uses %q attention, model uses %q",
			ck.AttnMethod, dec.attn.Method)
	}
	if len(ck.EncFwd) != len(enc.fwd) || len(ck.EncBwd) != len(enc.bwd) {
		return fmt.Errorf("seq2seq: load: encoder layer count mismatch")
	}
	if len(ck.DecCells) != len(dec.cells) {
		return fmt.Errorf("seq2seq: load: decoder layer count mismatch")
	}

	if err := unpackMat(ck.Embedding, enc.Embedding); err != nil {
		return err
	}
	for i, d := range ck.EncFwd {
		if err := unpackCell(d, enc.fwd[i]); err != nil {
			return err
		}
	}
	for i, d := range ck.EncBwd {
		if err := unpackCell(d, enc.bwd[i]); err != nil {
			return err
		}
	}
	for i, d := range ck.DecCells {
		if err := unpackCell(d, dec.cells[i]); err != nil {
			return err
		}
	}
	if ck.AttnWa != nil {
		if dec.attn.Wa == nil {
			return fmt.Errorf("seq2seq: load: checkpoint has attention weights the model lacks")
		}
		if err := unpackMat(*ck.AttnWa, dec.attn.Wa); err != nil {
			return err
		}
	}
	if ck.AttnV != nil {
		if dec.attn.v == nil {
			return fmt.Errorf("seq2seq: load: checkpoint has attention vector the model lacks")
		}
		if err := unpackMat(*ck.AttnV, dec.attn.v); err != nil {
			return err
		}
	}
	for _, p := range []struct {
		src matData
		dst *mat.Dense
	}{
		{ck.Wconcat, dec.Wconcat}, {ck.Bconcat, dec.Bconcat},
		{ck.Wout, dec.Wout}, {ck.Bout, dec.Bout},
	} {
		if err := unpackMat(p.src, p.dst); err != nil {
			return err
		}
	}
	return nil
}
