package department

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rccmquiz/rccm/internal/question"
)

func TestCatalog_Count(t *testing.T) {
	assert.Len(t, All(), 13)
	assert.Len(t, ByTier(question.TierBasic), 1)
	assert.Len(t, ByTier(question.TierSpecialist), 12)
}

func TestCatalog_OrderMatchesConstants(t *testing.T) {
	for i, info := range All() {
		assert.Equal(t, Department(i+1), info.Department, "catalog index %d", i)
	}
}

func TestCatalog_UniqueNamesAndSlugs(t *testing.T) {
	names := map[string]bool{}
	slugs := map[string]bool{}
	for _, info := range All() {
		assert.False(t, names[info.Name], "duplicate name %q", info.Name)
		assert.False(t, slugs[info.Slug], "duplicate slug %q", info.Slug)
		names[info.Name] = true
		slugs[info.Slug] = true
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Department
		wantErr bool
	}{
		{"road", Road, false},
		{"ROAD", Road, false},
		{"河川、砂防及び海岸・海洋", RiverSabo, false},
		{"共通", Basic, false},
		{"河川", Unknown, true},
		{"river-sabo", Unknown, true},
		{"", Unknown, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromName_ExactOnly(t *testing.T) {
	d, ok := FromName("土質及び基礎")
	require.True(t, ok)
	assert.Equal(t, SoilFoundation, d)

	_, ok = FromName("土質及び基礎 ")
	assert.False(t, ok)
}

func TestCheckTier(t *testing.T) {
	require.NoError(t, CheckTier(Road, question.TierSpecialist))
	require.NoError(t, CheckTier(Basic, question.TierBasic))
	require.Error(t, CheckTier(Road, question.TierBasic))
	require.Error(t, CheckTier(Basic, question.TierSpecialist))
	require.Error(t, CheckTier(Unknown, question.TierBasic))
}

func TestInvalidDepartment(t *testing.T) {
	assert.False(t, Unknown.Valid())
	assert.False(t, Department(99).Valid())
	assert.Equal(t, "", Department(99).Name())
	assert.Equal(t, "department(99)", Department(99).String())
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		raw  string
		want Department
		ok   bool
	}{
		{"道路", Road, true},
		{" 道路 ", Road, true},
		{"河川・砂防及び海岸・海洋", RiverSabo, true},
		{"河川、砂防及び海岸・海洋", RiverSabo, true},
		{"都市計画及び地方計画", UrbanPlanning, true},
		{"施工計画、施工設備及び積算", ConstructionPlanning, true},
		{"上水道及び工業用水道", WaterSupply, true},
		{"鋼構造及びコンクリート", SteelConcrete, true},
		{"土質及び基礎", SoilFoundation, true},
		{"河川砂防", RiverSabo, true},
		{"河川、砂防及び海岸･海洋", RiverSabo, true},
		{"都市計画地方計画", UrbanPlanning, true},
		{"施工計画施工設備積算", ConstructionPlanning, true},
		{"電気電子", Unknown, false},
		{"施工計画以外の問題", Unknown, false},
		{"河川以外(砂防を除く)", Unknown, false},
		{"土質及び基礎以外", Unknown, false},
		{"道路・トンネル", Unknown, false},
		{"", Unknown, false},
	}
	for _, tt := range tests {
		got, ok := NormalizeCategory(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NormalizeCategory(%q) = %v, %v; want %v, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}
