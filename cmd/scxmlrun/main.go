// A simple, single-session process that runs one compiled document
// and exchanges events with stdin/stdout as line-delimited JSON.
//
// Grounded on the teacher's cmd/msimple/main.go, which reads a YAML
// spec filename, compiles it, and loops over stdin feeding messages
// through the walk and re-ingesting whatever it emits. This command
// keeps that YAML-config-plus-stdin/stdout shape but loads a small
// run configuration (selecting a built-in document and a data model)
// rather than a full SCXML/state-chart grammar; parsing <scxml> XML
// documents is outside the interpreter core's scope (specification
// section 6/7 treats document loading as a host concern), so the set
// of documents available here is the fixed catalog in ir/fixtures.go.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"

	"github.com/jsccast/yaml"

	"github.com/nburns/scxml/datamodel"
	"github.com/nburns/scxml/ecmadatamodel"
	"github.com/nburns/scxml/event"
	"github.com/nburns/scxml/exprlang"
	"github.com/nburns/scxml/interp"
	"github.com/nburns/scxml/ioprocessor"
	"github.com/nburns/scxml/ir"
	"github.com/nburns/scxml/registry"
	"github.com/nburns/scxml/timers"
	"github.com/nburns/scxml/value"
	"github.com/nburns/scxml/wsprocessor"
)

// runConfig is the run configuration's YAML shape: which catalog
// document to run, which data model binds its expressions, and
// whether to log interpreter internals to stderr.
type runConfig struct {
	Doc       string `yaml:"doc"`
	Datamodel string `yaml:"datamodel"`
	Verbose   bool   `yaml:"verbose"`
}

// catalog maps a run configuration's "doc" name to the fixture that
// builds it.
var catalog = map[string]func() (*ir.Doc, error){
	"eventless-chain":  ir.EventlessChainDoc,
	"external-event":   ir.ExternalEventDoc,
	"parallel-regions": ir.ParallelRegionsDoc,
	"shallow-history":  ir.ShallowHistoryDoc,
	"foreach-sum":      ir.ForeachSumDoc,
	"late-binding":     ir.LateBindingDoc,
	"invoke-finalize":  ir.InvokeFinalizeDoc,
}

func main() {
	var (
		configFilename = flag.String("c", "", "run config filename (YAML)")
		docName        = flag.String("doc", "", "catalog document name, overrides the config file")
		echo           = flag.Bool("e", false, "echo input messages")
	)
	flag.Parse()

	cfg := runConfig{Doc: "eventless-chain", Datamodel: "bundled"}
	if *configFilename != "" {
		src, err := ioutil.ReadFile(*configFilename)
		if err != nil {
			log.Fatalf("reading config: %v", err)
		}
		if err := yaml.Unmarshal(src, &cfg); err != nil {
			log.Fatalf("parsing config: %v", err)
		}
	}
	if *docName != "" {
		cfg.Doc = *docName
	}

	build, ok := catalog[cfg.Doc]
	if !ok {
		log.Fatalf("unknown doc %q", cfg.Doc)
	}
	doc, err := build()
	if err != nil {
		log.Fatalf("building doc: %v", err)
	}

	var dm datamodel.DataModel
	switch cfg.Datamodel {
	case "", "bundled":
		dm = exprlang.New()
	case "ecmascript":
		dm = ecmadatamodel.New()
	default:
		log.Fatalf("unknown datamodel %q", cfg.Datamodel)
	}

	reg := registry.New()
	sched := timers.New()

	ws := wsprocessor.New("scxmlrun")
	processors := map[string]ioprocessor.Processor{
		wsprocessor.Type:          ws,
		wsprocessor.TypeShorthand: ws,
	}

	s := interp.New(interp.Options{
		ID:        "scxmlrun",
		Doc:       doc,
		DM:        dm,
		Registry:  reg,
		Scheduler: sched,
		Processors: processors,
		Invokers: map[string]interp.Invoker{
			"scxml": interp.NewInProcessInvoker(func() datamodel.DataModel {
				switch cfg.Datamodel {
				case "ecmascript":
					return ecmadatamodel.New()
				default:
					return exprlang.New()
				}
			}),
		},
		Verbose: cfg.Verbose,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		log.Fatalf("starting session: %v", err)
	}

	go s.Run(ctx)

	select {
	case <-s.Done():
		printDoneData(s)
		return
	default:
	}

	in := bufio.NewReader(os.Stdin)
	for {
		line, err := in.ReadBytes('\n')
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("reading stdin: %v", err)
		}

		var msg struct {
			Name string                 `json:"name"`
			Data map[string]interface{} `json:"data"`
		}
		if err := json.Unmarshal(line, &msg); err != nil {
			fmt.Printf("error: %s\n", err)
			continue
		}
		if *echo {
			fmt.Printf("in: %s", line)
		}

		s.External.Enqueue(event.Event{Name: msg.Name, Data: toValue(msg.Data)})

		select {
		case <-s.Done():
			printDoneData(s)
			return
		default:
		}
	}

	<-s.Done()
	printDoneData(s)
}

func printDoneData(s *interp.Session) {
	js, err := json.Marshal(toJSON(s.DoneData()))
	if err != nil {
		fmt.Printf("error: %s\n", err)
		return
	}
	fmt.Printf("%s\n", js)
}

func toValue(m map[string]interface{}) value.Value {
	if m == nil {
		return value.None
	}
	om := value.NewOrderedMap()
	for k, v := range m {
		om.Set(k, toValueAny(v))
	}
	return value.NewMap(om)
}

func toValueAny(x interface{}) value.Value {
	switch t := x.(type) {
	case nil:
		return value.Null
	case string:
		return value.NewString(t)
	case bool:
		return value.NewBoolean(t)
	case float64:
		return value.NewDouble(t)
	case map[string]interface{}:
		return toValue(t)
	case []interface{}:
		a := make([]value.Value, len(t))
		for i, e := range t {
			a[i] = toValueAny(e)
		}
		return value.NewArray(a)
	default:
		return value.NewErrorf("unsupported JSON value %v", t)
	}
}

func toJSON(v value.Value) interface{} {
	switch v.Kind {
	case value.KindNull, value.KindNone:
		return nil
	case value.KindError:
		return map[string]string{"error": v.ErrorMessage()}
	case value.KindInteger:
		return v.Integer()
	case value.KindDouble:
		return v.Double()
	case value.KindBoolean:
		return v.Boolean()
	case value.KindString:
		return v.String()
	case value.KindArray:
		out := make([]interface{}, 0, len(v.Array()))
		for _, e := range v.Array() {
			out = append(out, toJSON(e))
		}
		return out
	case value.KindMap:
		out := map[string]interface{}{}
		v.Map().Range(func(k string, e value.Value) {
			out[k] = toJSON(e)
		})
		return out
	default:
		return nil
	}
}
