package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/africanmarketos/amos-mvr-go/executor"
	"github.com/africanmarketos/amos-mvr-go/mvr"
)

// ScoreOptions holds options for the score command.
type ScoreOptions struct {
	File string

	AMOSID         string
	Sector         string
	Region         string
	Revenue        float64
	Cash           float64
	DaysSilent     float64
	OccupancyRate  float64
	CollectionRate float64
}

// NewScoreCommand creates the score command.
func NewScoreCommand(global *GlobalOptions) *cobra.Command {
	opts := &ScoreOptions{}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one AMOS entity",
		Long: `Sends a score request and prints the response as JSON.

The request is read from a JSON file (--file, "-" for stdin). Flags set on the
command line override the matching fields of the file.`,
		Example: `  # Score from a request file
  mvrctl score --file request.json

  # Score from flags
  mvrctl score --amos-id A-1 --sector FMCG_RETAIL --region EA \
    --revenue 120000 --cash 8000 --days-silent 3 \
    --occupancy-rate 80 --collection-rate 92.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd, global, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", `JSON request file, "-" for stdin`)
	cmd.Flags().StringVar(&opts.AMOSID, "amos-id", "", "Entity identifier")
	cmd.Flags().StringVar(&opts.Sector, "sector", "", "Sector code, e.g. FMCG_RETAIL")
	cmd.Flags().StringVar(&opts.Region, "region", "", "Region code, e.g. EA")
	cmd.Flags().Float64Var(&opts.Revenue, "revenue", 0, "Revenue")
	cmd.Flags().Float64Var(&opts.Cash, "cash", 0, "Cash")
	cmd.Flags().Float64Var(&opts.DaysSilent, "days-silent", 0, "Days without activity")
	cmd.Flags().Float64Var(&opts.OccupancyRate, "occupancy-rate", 0, "Occupancy rate, 0-100")
	cmd.Flags().Float64Var(&opts.CollectionRate, "collection-rate", 0, "Collection rate, 0-100")

	return cmd
}

func runScore(cmd *cobra.Command, global *GlobalOptions, opts *ScoreOptions) error {
	req, err := buildScoreRequest(cmd, opts)
	if err != nil {
		return err
	}

	s, err := openSession(cmd, global)
	if err != nil {
		return err
	}
	defer s.close()

	resp, err := s.client.ScoreAMOS(commandContext(cmd), req)
	if err != nil {
		return reportFailure(cmd.OutOrStdout(), executor.NormalizeError(err))
	}
	return writeJSON(cmd.OutOrStdout(), resp)
}

func buildScoreRequest(cmd *cobra.Command, opts *ScoreOptions) (*mvr.AMOSScoreRequest, error) {
	req := &mvr.AMOSScoreRequest{}
	if opts.File != "" {
		if err := readScoreRequest(cmd.InOrStdin(), opts.File, req); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("amos-id") {
		req.AMOSID = opts.AMOSID
	}
	if flags.Changed("sector") {
		req.Sector = mvr.Sector(opts.Sector)
	}
	if flags.Changed("region") {
		req.Region = opts.Region
	}
	if flags.Changed("revenue") {
		req.Revenue = opts.Revenue
	}
	if flags.Changed("cash") {
		req.Cash = opts.Cash
	}
	if flags.Changed("days-silent") {
		req.DaysSilent = opts.DaysSilent
	}
	if flags.Changed("occupancy-rate") {
		req.OccupancyRate = opts.OccupancyRate
	}
	if flags.Changed("collection-rate") {
		req.CollectionRate = opts.CollectionRate
	}
	return req, nil
}

func readScoreRequest(stdin io.Reader, path string, req *mvr.AMOSScoreRequest) error {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open request file: %w", err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		return fmt.Errorf("failed to decode request %s: %w", path, err)
	}
	return nil
}
