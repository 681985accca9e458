package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arloliu/hashvec"
	"github.com/arloliu/hashvec/endian"
	"github.com/arloliu/hashvec/jsonrec"
	"github.com/arloliu/hashvec/vecblob"
)

// headerSummary is the JSON form of a blob header.
type headerSummary struct {
	Count         uint32 `json:"count"`
	BitWidth      uint8  `json:"bit_width"`
	Compression   string `json:"compression"`
	Endianness    string `json:"endianness"`
	Fingerprint   string `json:"fingerprint"`
	PayloadLength uint32 `json:"payload_length"`
	StoredLength  uint32 `json:"stored_length"`
}

func summarize(h vecblob.Header) headerSummary {
	return headerSummary{
		Count:         h.Count,
		BitWidth:      h.Flag.BitWidth,
		Compression:   h.Flag.Compression().String(),
		Endianness:    endian.Name(h.Flag.GetEndianEngine()),
		Fingerprint:   fmt.Sprintf("%016x", h.Fingerprint),
		PayloadLength: h.PayloadLength,
		StoredLength:  h.StoredLength,
	}
}

func (a *app) newInspectCmd() *cobra.Command {
	var (
		configPath  string
		withVectors bool
	)

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the header and optionally the vectors of a vector blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read blob: %w", err)
			}

			var dec *vecblob.Decoder
			if configPath != "" {
				pipeline, err := hashvec.LoadPipeline(configPath)
				if err != nil {
					return fmt.Errorf("load %s: %w", configPath, err)
				}
				dec, err = pipeline.NewDecoder(data)
				if err != nil {
					return err
				}
			} else {
				dec, err = vecblob.NewDecoder(data)
				if err != nil {
					return err
				}
			}

			w := jsonrec.NewWriter(a.out)
			if err := w.Write(summarize(dec.Header())); err != nil {
				return err
			}

			if withVectors {
				for i, v := range dec.All() {
					if err := w.WriteVector(i, v); err != nil {
						return err
					}
				}
			}

			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "verify the blob against this hyperparameter document")
	cmd.Flags().BoolVar(&withVectors, "vectors", false, "print every vector as a JSON line")

	return cmd
}
