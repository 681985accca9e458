package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arloliu/hashvec/errs"
	"github.com/arloliu/hashvec/murmur"
)

func (a *app) newHashCmd() *cobra.Command {
	var asInt bool

	cmd := &cobra.Command{
		Use:   "hash VALUE...",
		Short: "Print the 32-bit MurmurHash3 of strings or ints",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				var h int32
				if asInt {
					v, err := strconv.ParseInt(arg, 10, 32)
					if err != nil {
						return fmt.Errorf("%w: %q is not a 32-bit integer", errs.ErrInvalidRecord, arg)
					}
					h = murmur.HashInt(int32(v))
				} else {
					h = murmur.HashString(arg)
				}

				if _, err := fmt.Fprintf(a.out, "%s\t%d\n", arg, h); err != nil {
					return err
				}
			}

			return nil
		},
	}
	cmd.Flags().BoolVar(&asInt, "int", false, "hash arguments as 32-bit integers")

	return cmd
}
