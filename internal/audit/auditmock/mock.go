package auditmock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/audit"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/domain"
)

type MockSink struct {
	mock.Mock
}

var _ audit.Sink = (*MockSink)(nil)

func (m *MockSink) Append(ctx context.Context, calc domain.Calculation) error {
	args := m.Called(ctx, calc)
	return args.Error(0)
}
