// Package reads loads the query reads that were given to BLAST or DIAMOND.
package reads

import (
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"

	"matchplot/internal/alignments"
)

// Set holds reads in input order and their sequences. With compression
// enabled, sequences are kept zstd-compressed and decoded on demand; only
// reads that reach the output are ever decoded.
type Set struct {
	reads   []alignments.Read
	seqs    map[string][]byte
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Load reads every record of the FASTA/FASTQ files, in order. The read id
// is the full header line. compLevel 0 disables compression, 1-22 is a zstd
// level.
func Load(files []string, compLevel int) (*Set, error) {
	if compLevel < 0 || compLevel > 22 {
		return nil, errors.Errorf("compression level must be between 0 and 22 (got %d)", compLevel)
	}
	seq.ValidateSeq = false

	s := &Set{seqs: make(map[string][]byte)}
	if compLevel > 0 {
		var err error
		s.encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compLevel)))
		if err != nil {
			return nil, errors.Wrap(err, "creating zstd encoder")
		}
		s.decoder, err = zstd.NewReader(nil)
		if err != nil {
			return nil, errors.Wrap(err, "creating zstd decoder")
		}
	}

	for _, file := range files {
		if err := s.load(file); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Set) load(file string) error {
	reader, err := fastx.NewDefaultReader(file)
	if err != nil {
		return errors.Wrapf(err, "reading %s", file)
	}
	defer reader.Close()

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "reading record from %s", file)
		}

		id := string(record.Name)
		if _, dup := s.seqs[id]; dup {
			return errors.Errorf("duplicate read id %q in %s", id, file)
		}

		var data []byte
		if s.encoder != nil {
			data = s.encoder.EncodeAll(record.Seq.Seq, make([]byte, 0, len(record.Seq.Seq)/2))
		} else {
			// copy, the reader reuses its buffers
			data = append([]byte(nil), record.Seq.Seq...)
		}
		s.seqs[id] = data
		s.reads = append(s.reads, alignments.Read{ID: id, Length: len(record.Seq.Seq)})
	}
	return nil
}

// Reads returns the reads in input order.
func (s *Set) Reads() []alignments.Read {
	return s.reads
}

// Len is the number of reads.
func (s *Set) Len() int { return len(s.reads) }

// Sequence returns the sequence of read id.
func (s *Set) Sequence(id string) (string, error) {
	data, ok := s.seqs[id]
	if !ok {
		return "", errors.Errorf("unknown read %q", id)
	}
	if s.decoder == nil {
		return string(data), nil
	}
	plain, err := s.decoder.DecodeAll(data, nil)
	if err != nil {
		return "", errors.Wrapf(err, "decompressing read %q", id)
	}
	return string(plain), nil
}

// Close releases the zstd encoder and decoder.
func (s *Set) Close() {
	if s.encoder != nil {
		s.encoder.Close()
	}
	if s.decoder != nil {
		s.decoder.Close()
	}
}
