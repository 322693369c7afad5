package config

// Application constants
const (
	AppName    = "salesreport"
	AppVersion = "1.0.0"

	// Workbook defaults
	DefaultWorkbook        = "Sales_Data.xlsx"
	DefaultSalesSheet      = "Sales_Data"
	DefaultStateSheet      = "State_list"
	DefaultSupervisorSheet = "Supervisor"

	DefaultOutputDir   = "outputs"
	DefaultLogFile     = "logs/salesreport.log"
	DefaultMetricsFile = "metrics.prom"

	DefaultTopStates      = 20
	DefaultTopSupervisors = 20
	DefaultTopBrands      = 10

	// Chart sizes in inches
	DefaultChartWidth  = 10.0
	DefaultChartHeight = 6.0
)

// Sales sheet column names. Matching is exact and case-sensitive.
const (
	ColOrderNumber = "Order_Number"
	ColStateCode   = "State_Code"
	ColOrderDate   = "Order_Date"
	ColCategory    = "Category"
	ColBrand       = "Brand"
	ColCost        = "Cost"
	ColSales       = "Sales"
	ColQuantity    = "Quantity"
	ColTotalCost   = "Total_Cost"
	ColTotalSales  = "Total_Sales"
	ColProfit      = "Profit"

	// Region name column contributed by the state lookup sheet
	ColState = "State"

	// Calendar columns derived from Order_Date
	ColYear     = "Year"
	ColMonth    = "Month"
	ColMonthNum = "Month_Num"
	ColDay      = "Day"
	ColWeekday  = "Weekday"

	// Column probed on the supervisor lookup sheet
	ColSupervisorLookup = "Supervisor"
)

// RequiredKeyColumns must be non-null on every cleaned row.
var RequiredKeyColumns = []string{ColOrderNumber, ColStateCode, ColOrderDate}

// NumericColumns are coerced to numbers during cleaning and feed the
// correlation matrix, in this order.
var NumericColumns = []string{ColCost, ColSales, ColQuantity, ColTotalCost, ColTotalSales}

// SupervisorCandidates lists the supervisor column names in priority order.
var SupervisorCandidates = []string{"Assigned Supervisor", "Supervisor", "Salesperson", "Supervisor Name"}

// Output file names
const (
	MonthlyTrendChartFile    = "monthly_sales_trend.png"
	StateSalesChartFile      = "state_sales_top20.png"
	CategorySalesChartFile   = "category_sales.png"
	SupervisorChartFile      = "supervisor_performance.png"
	TopBrandsChartFile       = "top_brands.png"
	ProfitByCategoryFile     = "profit_by_category.png"
	CorrelationHeatmapFile   = "correlation_heatmap.png"
	SalesByStateCSVFile      = "sales_by_state.csv"
	SalesByCategoryCSVFile   = "sales_by_category.csv"
	SupervisorSummaryCSVFile = "supervisor_summary.csv"
	CleanedDataCSVFile       = "sales_data_cleaned.csv"
)
