package perf

import (
	"strings"
	"testing"

	"github.com/Prasanna-Nadrajan/mlreview/internal/rules"
)

const sampleScript = `import pandas as pd
import numpy as np
from sklearn.svm import SVC

np.random.seed()
df = pd.read_csv('data.csv')
df = df.dropna()
for idx, row in df.iterrows():
    print(row)
model = SVC()
model.fit(X, y)
`

func benchEngine(b *testing.B) *rules.Engine {
	b.Helper()
	eng, err := rules.NewEngine(rules.DefaultRegistry())
	if err != nil {
		b.Fatalf("engine: %v", err)
	}
	return eng
}

func BenchmarkReview_Small(b *testing.B) {
	eng := benchEngine(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = eng.Review(sampleScript)
	}
}

func BenchmarkReview_Large(b *testing.B) {
	eng := benchEngine(b)
	code := strings.Repeat(sampleScript, 200)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = eng.Review(code)
	}
}

func BenchmarkNewEngine(b *testing.B) {
	reg := rules.DefaultRegistry()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := rules.NewEngine(reg); err != nil {
			b.Fatal(err)
		}
	}
}
