package memorykv_test

import (
	"testing"

	"github.com/trezcool/edutrack/storage/kvstore/memory"
	"github.com/trezcool/edutrack/tests"
)

func TestStore(t *testing.T) {
	testutil.KVStoreContract(t, memorykv.Open())
}
