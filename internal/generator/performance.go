package generator

// PerformanceConfig carries the pgloader tuning knobs rendered into the
// load configuration.
type PerformanceConfig struct {
	Workers            int
	Concurrency        int
	BatchRows          int
	PrefetchRows       int
	WorkMem            string
	MaintenanceWorkMem string
}

const gib = int64(1) << 30

// AutoDetectPerformance sizes the pgloader knobs from the CSV file size.
// Tiers are coarse on purpose: small files finish quickly regardless, large
// files benefit from parallelism and bigger batches.
func AutoDetectPerformance(fileSizeBytes int64) PerformanceConfig {
	switch {
	case fileSizeBytes >= 10*gib:
		return PerformanceConfig{
			Workers:            16,
			Concurrency:        4,
			BatchRows:          100000,
			PrefetchRows:       50000,
			WorkMem:            "1GB",
			MaintenanceWorkMem: "2GB",
		}
	case fileSizeBytes >= gib:
		return PerformanceConfig{
			Workers:            8,
			Concurrency:        2,
			BatchRows:          50000,
			PrefetchRows:       25000,
			WorkMem:            "512MB",
			MaintenanceWorkMem: "1GB",
		}
	default:
		return PerformanceConfig{
			Workers:            4,
			Concurrency:        1,
			BatchRows:          25000,
			PrefetchRows:       10000,
			WorkMem:            "256MB",
			MaintenanceWorkMem: "512MB",
		}
	}
}
