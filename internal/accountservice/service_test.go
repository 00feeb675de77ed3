package accountservice

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/slavapak/ledger/internal/domain"
	"github.com/slavapak/ledger/pkg/errorspkg"
	"github.com/slavapak/ledger/pkg/randompkg"
)

func TestCreate(t *testing.T) {
	defaultBalance := randompkg.Balance()

	testAccount := domain.Account{
		ID:        randompkg.AccountID(),
		Balance:   defaultBalance,
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}

	testCases := []struct {
		name          string
		buildStubs    func(repo *MockRepo)
		checkResponse func(t *testing.T, got domain.Account, err error)
	}{
		{
			name: "OK",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Create(gomock.Any(), gomock.Eq(defaultBalance)).
					Times(1).
					Return(testAccount, nil)
			},
			checkResponse: func(t *testing.T, got domain.Account, err error) {
				require.NoError(t, err)
				require.Equal(t, testAccount, got)
			},
		},
		{
			name: "InternalError",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Create(gomock.Any(), gomock.Eq(defaultBalance)).
					Times(1).
					Return(domain.Account{}, errorspkg.ErrInternal)
			},
			checkResponse: func(t *testing.T, got domain.Account, err error) {
				require.ErrorIs(t, err, errorspkg.ErrInternal)
				require.Empty(t, got)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			service := New(repo, defaultBalance)

			got, err := service.Create(context.Background())
			tc.checkResponse(t, got, err)
		})
	}
}

func TestGet(t *testing.T) {
	testAccount := domain.Account{ID: 7, Balance: 250}

	testCases := []struct {
		name       string
		id         int64
		buildStubs func(repo *MockRepo)
		want       domain.Account
		wantErr    error
	}{
		{
			name: "OK",
			id:   testAccount.ID,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), gomock.Eq(testAccount.ID)).Times(1).Return(testAccount, nil)
			},
			want: testAccount,
		},
		{
			name: "NotFound",
			id:   8,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), gomock.Eq(int64(8))).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			wantErr: domain.ErrAccountNotFound,
		},
		{
			name: "InternalError",
			id:   9,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), gomock.Eq(int64(9))).
					Times(1).
					Return(domain.Account{}, errorspkg.ErrInternal)
			},
			wantErr: errorspkg.ErrInternal,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			got, err := New(repo, 100).Get(context.Background(), tc.id)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
