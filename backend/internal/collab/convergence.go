package collab

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"collabDelta/backend/internal/ot/delta"
)

// CheckOptions 随机收敛检查的参数
type CheckOptions struct {
	Rounds       int
	Workers      int
	Seed         uint64
	MaxDocLength int
	MaxOps       int
	// EmbedRatio 生成 insert 时产生 embed 的概率
	EmbedRatio float64
}

func (o CheckOptions) withDefaults() CheckOptions {
	if o.Rounds <= 0 {
		o.Rounds = 1
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.MaxDocLength <= 0 {
		o.MaxDocLength = 16
	}
	if o.MaxOps <= 0 {
		o.MaxOps = 4
	}
	return o
}

const (
	PropertyConvergence = "convergence"
	PropertyLeftAction  = "left-action"
	PropertyBuffer      = "buffer"
	PropertyChop        = "chop"
)

// CheckFailure 一次性质不成立的记录，带上复现所需的输入
type CheckFailure struct {
	Round    int
	Property string
	Doc      string
	A        string
	B        string
	Detail   string
}

type CheckReport struct {
	Rounds   int
	Failures []CheckFailure
}

func (r *CheckReport) OK() bool {
	return len(r.Failures) == 0
}

// CheckConvergence 按 Seed 生成随机文档与并发修改对，逐轮检查：
//
//	a ∘ transform(a, b, true) == b ∘ transform(b, a, false)
//	(doc ∘ a) ∘ a' == doc ∘ (a ∘ a')
//	PieceTable(doc).Apply(a) == doc ∘ a
//	chop(chop(x)) == chop(x)
//
// 每轮的随机源只由 (Seed, round) 决定，与调度顺序无关。
// 性质失败记入报告；ctx 取消时返回 ctx 的错误。
func CheckConvergence(ctx context.Context, opts CheckOptions) (*CheckReport, error) {
	opts = opts.withDefaults()
	sem := NewSemaphoreControl(opts.Workers)
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	report := &CheckReport{}

	for round := 0; round < opts.Rounds; round++ {
		if err := sem.Acquire(gctx); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release()
			if err := gctx.Err(); err != nil {
				return err
			}
			failures := checkRound(round, opts)
			glog.V(1).Infof("check round=%d failures=%d", round, len(failures))

			mu.Lock()
			report.Rounds++
			report.Failures = append(report.Failures, failures...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	for _, f := range report.Failures {
		glog.Warningf("check failed round=%d property=%s doc=%s a=%s b=%s: %s",
			f.Round, f.Property, f.Doc, f.A, f.B, f.Detail)
	}
	glog.Infof("check done rounds=%d failures=%d seed=%d", report.Rounds, len(report.Failures), opts.Seed)
	return report, nil
}

func checkRound(round int, opts CheckOptions) []CheckFailure {
	r := rand.New(rand.NewPCG(opts.Seed, uint64(round)))
	gen := generator{r: r, opts: opts}

	doc := gen.document()
	a := gen.change(doc.Length())
	b := gen.change(doc.Length())

	var failures []CheckFailure
	fail := func(property, detail string) {
		failures = append(failures, CheckFailure{
			Round:    round,
			Property: property,
			Doc:      doc.String(),
			A:        a.String(),
			B:        b.String(),
			Detail:   detail,
		})
	}

	aPrime := a.Transform(b, true)
	bPrime := b.Transform(a, false)
	left := a.Compose(aPrime)
	right := b.Compose(bPrime)
	if !left.Equal(right) {
		fail(PropertyConvergence, "a∘a'="+left.String()+" b∘b'="+right.String())
	}
	stepwise := doc.Compose(a).Compose(aPrime)
	if other := doc.Compose(b).Compose(bPrime); !stepwise.Equal(other) {
		fail(PropertyConvergence, "doc∘a∘a'="+stepwise.String()+" doc∘b∘b'="+other.String())
	}

	combined := doc.Compose(left)
	if !stepwise.Equal(combined) {
		fail(PropertyLeftAction, "stepwise="+stepwise.String()+" combined="+combined.String())
	}

	pt := NewPieceTable(DocumentText(doc))
	if err := pt.Apply(a); err != nil {
		fail(PropertyBuffer, err.Error())
	} else if want := DocumentText(doc.Compose(a)); pt.String() != want {
		fail(PropertyBuffer, "buffer="+pt.String()+" delta="+want)
	}

	once := delta.FromOps(a.Ops()).Chop()
	twice := delta.FromOps(once.Ops()).Chop()
	if !once.Equal(twice) {
		fail(PropertyChop, "once="+once.String()+" twice="+twice.String())
	}
	return failures
}

var (
	alphabet = []rune("abcdefgh 你好")
	palette  = []delta.AttributeMap{
		nil,
		{"bold": true},
		{"color": "red"},
		{"color": "blue", "italic": true},
	}
	// retain 上用到的属性修改，含移除标记
	formats = []delta.AttributeMap{
		nil,
		{"bold": true},
		{"bold": nil},
		{"color": "green"},
		{"color": nil, "italic": true},
	}
)

type generator struct {
	r    *rand.Rand
	opts CheckOptions
}

func (g generator) text(n int) string {
	out := make([]rune, n)
	for i := range out {
		out[i] = alphabet[g.r.IntN(len(alphabet))]
	}
	return string(out)
}

func (g generator) insert(d *delta.Delta, attrs delta.AttributeMap) int {
	if g.r.Float64() < g.opts.EmbedRatio {
		d.InsertEmbed(map[string]any{"image": g.text(1)}, attrs)
		return 1
	}
	n := 1 + g.r.IntN(4)
	d.Insert(g.text(n), attrs)
	return n
}

// document 只含 insert 的随机文档
func (g generator) document() *delta.Delta {
	doc := delta.New()
	target := g.r.IntN(g.opts.MaxDocLength + 1)
	for doc.Length() < target {
		g.insert(doc, palette[g.r.IntN(len(palette))])
	}
	return doc
}

// change 针对长度为 docLen 的文档生成一个合法的 change-set
func (g generator) change(docLen int) *delta.Delta {
	d := delta.New()
	pos := 0
	for i := 0; i < g.opts.MaxOps; i++ {
		remain := docLen - pos
		switch k := g.r.IntN(3); {
		case k == 0 || remain == 0:
			g.insert(d, palette[g.r.IntN(len(palette))])
		case k == 1:
			n := 1 + g.r.IntN(remain)
			d.Retain(n, formats[g.r.IntN(len(formats))])
			pos += n
		default:
			n := 1 + g.r.IntN(remain)
			d.Delete(n)
			pos += n
		}
	}
	return d.Chop()
}
