package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wbsdash/internal/config"
	"wbsdash/internal/importer"
	"wbsdash/internal/model"
	"wbsdash/internal/parser"
	"wbsdash/internal/server"
	"wbsdash/internal/service/excel"
	"wbsdash/internal/store"
)

// cliOptions 全局参数
type cliOptions struct {
	configPath  string
	mappingPath string
	today       string
	output      string
	pretty      bool
	cache       bool
	tableType   string
	preferFirst bool

	out io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	o := &cliOptions{out: out}

	root := &cobra.Command{
		Use:          "wbsdash",
		Short:        "Analyze WBS progress workbooks",
		Long:         "wbsdash reads an Activity Summary and Resource Assignments workbook and reports\nschedule, earned and variance metrics with cell-level provenance as JSON.",
		SilenceUsage: true,
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "Path to config.toml (default: next to the executable)")
	pf.StringVar(&o.mappingPath, "mapping", "", "Column mapping file (YAML or JSON); overrides [mapping] file")
	pf.StringVar(&o.today, "today", "", "Reporting date, e.g. 2025-02-03 or 03-Feb-25 (default: now)")
	pf.StringVarP(&o.output, "output", "o", "", "Output file path (default: stdout)")
	pf.BoolVar(&o.pretty, "pretty", false, "Pretty-print JSON output")
	pf.BoolVar(&o.cache, "cache", false, "Use the SQLite result cache in the data directory")

	root.AddCommand(
		o.fileCmd("tables <file>", "Detect Activity Summary and Resource Assignments tables", (*importer.Coordinator).Tables),
		o.withTableFlags(o.fileCmd("headers <file>", "Show headers and the effective column mapping of a table", (*importer.Coordinator).Headers)),
		o.fileCmd("compare <file>", "Compare Activity IDs between the summary and the planned assignments", (*importer.Coordinator).Compare),
		o.fileCmd("schedule <file>", "Current-week schedule % per activity", (*importer.Coordinator).Schedule),
		o.withTableFlags(o.fileCmd("preview <file>", "Flat activity rows with WBS levels", (*importer.Coordinator).Preview)),
		o.fileCmd("wbs <file>", "WBS tree with node metrics for every summary table", (*importer.Coordinator).WBS),
		o.weeklyCmd(),
		o.exportCmd(),
		o.suggestCmd(),
		o.serveCmd(),
	)
	return root
}

// withTableFlags 添加 --type 与 --prefer-first
func (o *cliOptions) withTableFlags(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().StringVar(&o.tableType, "type", string(model.TableTypeActivitySummary), "Table type: activity_summary or resource_assignments")
	cmd.Flags().BoolVar(&o.preferFirst, "prefer-first", false, "Use the first table of the type instead of the largest")
	return cmd
}

type coordinatorOp func(*importer.Coordinator, importer.Request) (*importer.Response, error)

func (o *cliOptions) fileCmd(use, short string, op coordinatorOp) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.analyze(args[0], "", op)
		},
	}
}

func (o *cliOptions) weeklyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weekly <file> <activity-id>",
		Short: "Weekly planned / actual / forecast series for one activity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.analyze(args[0], args[1], (*importer.Coordinator).Weekly)
		},
	}
}

func (o *cliOptions) suggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <header>...",
		Short: "Suggest a canonical column mapping for the given headers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := o.parseTableType()
			if err != nil {
				return err
			}
			data, err := json.Marshal(parser.SuggestMapping(args, t))
			if err != nil {
				return err
			}
			return o.write(data)
		},
	}
	cmd.Flags().StringVar(&o.tableType, "type", string(model.TableTypeActivitySummary), "Table type: activity_summary or resource_assignments")
	return cmd
}

func (o *cliOptions) loadConfig() (*config.AppConfig, error) {
	path := o.configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, _, err := config.LoadConfigFrom(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.mappingPath != "" {
		cfg.Mapping.File = o.mappingPath
	}
	return cfg, nil
}

func (o *cliOptions) parseTableType() (model.TableType, error) {
	t := model.TableType(strings.TrimSpace(o.tableType))
	if t == "" {
		return model.TableTypeActivitySummary, nil
	}
	if _, ok := model.CanonicalFields[t]; !ok {
		return "", fmt.Errorf("invalid table type: %s", o.tableType)
	}
	return t, nil
}

func (o *cliOptions) parseToday() (time.Time, error) {
	if strings.TrimSpace(o.today) == "" {
		return time.Time{}, nil
	}
	d, ok := parser.ParseDateText(o.today)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid --today: %s", o.today)
	}
	return d, nil
}

// session 一次命令的协调器与公共请求参数
type session struct {
	coord *importer.Coordinator
	req   importer.Request
	store *store.Store
}

func (s *session) Close() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

// open 加载配置、映射与日期，创建协调器；--cache 时打开 SQLite 缓存
func (o *cliOptions) open(path string) (*session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	mapping, err := config.LoadMappingFile(cfg.Mapping.File)
	if err != nil {
		return nil, err
	}
	today, err := o.parseToday()
	if err != nil {
		return nil, err
	}
	t, err := o.parseTableType()
	if err != nil {
		return nil, err
	}

	s := &session{req: importer.Request{
		Path:        path,
		Today:       today,
		Mapping:     mapping,
		TableType:   t,
		PreferFirst: o.preferFirst,
	}}
	if o.cache {
		dataDir, err := config.EnsureDataDir(cfg)
		if err != nil {
			return nil, fmt.Errorf("prepare data dir: %w", err)
		}
		s.store, err = store.New(filepath.Join(dataDir, server.DBFileName))
		if err != nil {
			return nil, err
		}
	}

	engine := excel.NewEngine(importer.EngineOptions(cfg.Engine))
	s.coord = importer.NewCoordinator(engine, s.store, importer.Options{Sheets: cfg.Engine.Sheets})
	return s, nil
}

// analyze 经协调器执行一次分析并输出 JSON
func (o *cliOptions) analyze(path, activityID string, op coordinatorOp) error {
	s, err := o.open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	s.req.ActivityID = activityID
	resp, err := op(s.coord, s.req)
	if err != nil {
		return err
	}
	return o.write(resp.Data)
}

// write 输出 JSON 到文件或 stdout
func (o *cliOptions) write(data []byte) error {
	if o.pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return fmt.Errorf("format output: %w", err)
		}
		data = buf.Bytes()
	}
	if o.output != "" {
		if err := os.WriteFile(o.output, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	_, err := fmt.Fprintln(o.out, string(data))
	return err
}
